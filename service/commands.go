package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"yatube/app/config"
	"yatube/app/log"
	"yatube/app/services"
)

var stdin io.Reader = os.Stdin

var errCancelled = errors.New("operation cancelled")

// HandleCommand runs one yatube subcommand and returns an exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		return 1
	}

	cmd := strings.ToLower(args[0])
	if cmd == "help" {
		printHelp()
		return 0
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	log.InitLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	switch cmd {
	case "serve":
		if err := RunAppServer(cfg); err != nil {
			log.Log.WithError(err).Error("server stopped")
			return 1
		}
		return 0
	case "migrate":
		return migrate(cfg)
	case "createuser":
		if len(args) < 3 {
			fmt.Println("Error: createuser requires <username> <password>")
			return 1
		}
		return createUser(cfg, args[1], args[2])
	case "creategroup":
		if len(args) < 3 {
			fmt.Println("Error: creategroup requires <title> <slug> [description]")
			return 1
		}
		return createGroup(cfg, args[1], args[2], strings.Join(args[3:], " "))
	case "deleteuser":
		if len(args) < 2 {
			fmt.Println("Error: deleteuser requires <username>")
			return 1
		}
		return deleteUser(cfg, args[1])
	case "deletegroup":
		if len(args) < 2 {
			fmt.Println("Error: deletegroup requires <slug>")
			return 1
		}
		return deleteGroup(cfg, args[1])
	case "deletecomment":
		if len(args) < 2 {
			fmt.Println("Error: deletecomment requires <id>")
			return 1
		}
		id, err := strconv.Atoi(args[1])
		if err != nil || id < 1 {
			fmt.Printf("Error: invalid comment id %q\n", args[1])
			return 1
		}
		return deleteComment(cfg, id)
	case "clearcache":
		return clearCache(cfg)
	case "clean":
		return clean(cfg)
	case "backup":
		file := ""
		if len(args) > 1 {
			file = args[1]
		}
		return backup(cfg, file)
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			return 1
		}
		return restore(cfg, args[1])
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printHelp()
		return 1
	}
}

func printHelp() {
	helpText := `Usage: yatube <command> [arguments]

Commands:
  serve                                Run the blog server
  migrate                              Create the schema or open the store
  createuser <username> <password>     Create a user account
  creategroup <title> <slug> [desc]    Create a post group
  deleteuser <username>                Delete a user with their posts, comments and follows
  deletegroup <slug>                   Delete a group, keeping its posts ungrouped
  deletecomment <id>                   Delete a single comment
  clearcache                           Drop every cached index page
  clean                                Remove the badger database
  backup [file]                        Back up the badger database
  restore <file>                       Restore the badger database from a backup
  version                              Show version information
  help                                 Display this help message
`
	fmt.Println(helpText)
}

// confirm asks a yes/no question on stdin. Anything but y is a no.
func confirm(question string) bool {
	fmt.Print(question + " [y/N] ")
	line, _ := bufio.NewReader(stdin).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}

func withBackend(cfg config.Config, fn func(b *backend) error) int {
	b, err := openBackend(context.Background(), cfg)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer b.Close()
	if err := fn(b); errors.Is(err, errCancelled) {
		fmt.Println("Operation cancelled")
		return 1
	} else if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	return 0
}

func migrate(cfg config.Config) int {
	return withBackend(cfg, func(b *backend) error {
		fmt.Printf("Database ready (%s)\n", cfg.StorageDriver)
		return nil
	})
}

func createUser(cfg config.Config, username, password string) int {
	return withBackend(cfg, func(b *backend) error {
		user, err := services.NewUserService(b.store.Users).CreateUser(username, password)
		if err != nil {
			return err
		}
		fmt.Printf("User %s created with id %d\n", user.Username, user.ID)
		return nil
	})
}

func createGroup(cfg config.Config, title, slug, description string) int {
	return withBackend(cfg, func(b *backend) error {
		group, err := services.NewGroupService(b.store.Groups).CreateGroup(title, slug, description)
		if err != nil {
			return err
		}
		fmt.Printf("Group %s created at /group/%s/\n", group.Title, group.Slug)
		return nil
	})
}

func deleteUser(cfg config.Config, username string) int {
	return withBackend(cfg, func(b *backend) error {
		users := services.NewUserService(b.store.Users)
		user, err := users.GetByUsername(username)
		if err != nil {
			return err
		}
		question := fmt.Sprintf("Delete user %s and everything they posted? This cannot be undone.", user.Username)
		if !confirm(question) {
			return errCancelled
		}
		if _, err := users.DeleteUser(username); err != nil {
			return err
		}
		fmt.Printf("User %s deleted\n", user.Username)
		return b.cache.Clear(context.Background())
	})
}

func deleteGroup(cfg config.Config, slug string) int {
	return withBackend(cfg, func(b *backend) error {
		groups := services.NewGroupService(b.store.Groups)
		group, err := groups.GetBySlug(slug)
		if err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("Delete group %s? Its posts are kept without a group.", group.Title)) {
			return errCancelled
		}
		if _, err := groups.DeleteGroup(slug); err != nil {
			return err
		}
		fmt.Printf("Group %s deleted\n", group.Slug)
		return b.cache.Clear(context.Background())
	})
}

func deleteComment(cfg config.Config, id int) int {
	return withBackend(cfg, func(b *backend) error {
		comments := services.NewCommentService(b.store.Comments, b.store.Posts)
		comment, err := comments.GetComment(id)
		if err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("Delete comment %d on post %d: %q?", comment.ID, comment.PostID, comment.Text)) {
			return errCancelled
		}
		if err := comments.DeleteComment(id); err != nil {
			return err
		}
		fmt.Printf("Comment %d deleted\n", id)
		return nil
	})
}

func clearCache(cfg config.Config) int {
	return withBackend(cfg, func(b *backend) error {
		if err := b.cache.Clear(context.Background()); err != nil {
			return err
		}
		fmt.Println("Page cache cleared")
		return nil
	})
}

func requireBadger(cfg config.Config) bool {
	if cfg.StorageDriver != "badger" {
		fmt.Printf("Error: only the badger store supports this command (storage is %s)\n", cfg.StorageDriver)
		return false
	}
	return true
}

// clean removes the database.
func clean(cfg config.Config) int {
	if !requireBadger(cfg) {
		return 1
	}
	if _, err := os.Stat(cfg.BadgerPath); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}
	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 1
	}
	if err := os.RemoveAll(cfg.BadgerPath); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// backup writes a full badger backup to file, or to a timestamped file
// under <badger path>/../backups when file is empty.
func backup(cfg config.Config, file string) int {
	if !requireBadger(cfg) {
		return 1
	}
	if _, err := os.Stat(cfg.BadgerPath); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return 1
	}
	if file == "" {
		dir := filepath.Join(filepath.Dir(filepath.Clean(cfg.BadgerPath)), "backups")
		file = filepath.Join(dir, fmt.Sprintf("backup_%d.bak", time.Now().Unix()))
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	db, err := openBadgerDir(cfg.BadgerPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer db.Close()

	f, err := os.Create(file)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if _, err := db.Backup(f, 0); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}
	fmt.Printf("Database backed up successfully to %s\n", file)
	return 0
}

// restore replaces the database with the contents of a backup file.
func restore(cfg config.Config, file string) int {
	if !requireBadger(cfg) {
		return 1
	}
	fi, err := os.Stat(file)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", file)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", file)
		return 1
	}

	if _, err := os.Stat(cfg.BadgerPath); err == nil {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(cfg.BadgerPath); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	db, err := openBadgerDir(cfg.BadgerPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer db.Close()

	f, err := os.Open(file)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return db.Load(f, 4)
	}()
	if err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}
	fmt.Println("Database restored successfully")
	return 0
}
