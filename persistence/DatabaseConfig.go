package persistence

import (
	"database/sql"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
)

const (
	DriverMysql  = "mysql"
	DriverSqlite = "sqlite3"
)

type DatabaseConfig struct {
	DriverType string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DriverArgs string `env:"DB_ARGS" envDefault:"file:staffing.db?_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"`
	LogMode    bool   `env:"DB_LOG_MODE" envDefault:"false"`
}

func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	c := &DatabaseConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if c.DriverType != DriverMysql && c.DriverType != DriverSqlite {
		return nil, fmt.Errorf("unsupported database driver '%s'", c.DriverType)
	}
	return c, nil
}

// PrepareMysqlDatabase creates the database named in the dsn when it does not exist.
func PrepareMysqlDatabase(dsn string) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return err
	}
	databaseName := cfg.DBName
	if databaseName == "" {
		return nil
	}
	cfg.DBName = ""

	db, err := sql.Open(DriverMysql, cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName + "` DEFAULT CHARACTER SET utf8mb4")
	return err
}
