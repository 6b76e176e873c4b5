package datarecording

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tebeka/atexit"
)

// RecorderConfig selects and parameterizes a recording backend.
type RecorderConfig struct {
	// Type picks the backend, "sqlite" or "clickhouse". An empty type
	// means SQLite.
	Type string

	// ConnStr is an optional clickhouse://host:port/database URL with
	// username and password query parameters. It overrides the
	// individual connection fields.
	ConnStr string

	Host     string
	Port     int
	Database string
	Username string
	Password string

	// Path is the SQLite file path, without the extension.
	Path string

	BatchSize int
}

// NewDataRecorderWithConfig creates a DataRecorder from the config.
func NewDataRecorderWithConfig(cfg RecorderConfig) DataRecorder {
	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = 100000
	}

	switch strings.ToLower(cfg.Type) {
	case "", "sqlite":
		w := &sqliteWriter{
			dbName:    cfg.Path,
			batchSize: batchSize,
			tables:    make(map[string]*table),
		}
		w.init()
		atexit.Register(func() { w.Flush() })
		return w
	case "clickhouse":
		host, port := cfg.Host, cfg.Port
		database, username, password := cfg.Database, cfg.Username, cfg.Password
		if cfg.ConnStr != "" {
			var err error
			host, port, database, username, password, err =
				parseClickHouseConnStr(cfg.ConnStr)
			if err != nil {
				panic(err)
			}
		}
		return NewClickHouse(host, port, database, username, password,
			batchSize)
	default:
		panic(fmt.Sprintf("unknown recorder type %s", cfg.Type))
	}
}

func parseClickHouseConnStr(connStr string) (
	host string,
	port int,
	database string,
	username string,
	password string,
	err error,
) {
	u, err := url.Parse(connStr)
	if err != nil {
		return "", 0, "", "", "", err
	}

	if u.Scheme != "clickhouse" {
		return "", 0, "", "", "",
			fmt.Errorf("unsupported connection scheme %s", u.Scheme)
	}

	host = u.Hostname()

	port = 9000
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return "", 0, "", "", "", err
		}
	}

	database = strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	username = query.Get("username")
	password = query.Get("password")

	return host, port, database, username, password, nil
}
