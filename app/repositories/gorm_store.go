package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yatube/app/models"
)

// OpenPostgres connects to the postgres database described by dsn.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return openGorm(postgres.Open(dsn))
}

// OpenSQLite opens the sqlite file at path with foreign keys enforced. An
// empty path opens a private in-memory database.
func OpenSQLite(path string) (*gorm.DB, error) {
	inMemory := path == ""
	dsn := path + "?_foreign_keys=on"
	if inMemory {
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	}
	db, err := openGorm(sqlite.Open(dsn))
	if err != nil {
		return nil, err
	}
	if inMemory {
		// The in-memory database lives as long as one connection does.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func openGorm(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open sql database")
	}
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
	return errors.Wrap(err, "migrate schema")
}

// NewGormStore wires every repository to db. Closing the store closes db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:    NewGormUserRepository(db),
		Groups:   NewGormGroupRepository(db),
		Posts:    NewGormPostRepository(db),
		Comments: NewGormCommentRepository(db),
		Follows:  NewGormFollowRepository(db),
		closer: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(ErrDuplicate, err.Error())
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Wrap(ErrNotFound, err.Error())
	}
	return err
}

// affected turns a delete or update that touched no rows into ErrNotFound.
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// rowExists reports whether model has a row matching query.
func rowExists(db *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
