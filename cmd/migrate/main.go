package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/nemean-dev/cdl-admin/internal/infrastructure/config"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/logger"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/migration"
	"github.com/nemean-dev/cdl-admin/migrations"
)

// create writes here when -path is not given
const sourceDir = "migrations"

// schemaCommand runs against the database; args excludes the command name
type schemaCommand struct {
	usage string
	nargs int
	run   func(m *migration.Migrator, args []string) error
}

var schemaCommands = map[string]schemaCommand{
	"up": {usage: "up", run: func(m *migration.Migrator, _ []string) error {
		return m.Up()
	}},
	"down": {usage: "down", run: func(m *migration.Migrator, _ []string) error {
		return m.Down()
	}},
	"step": {usage: "step <n>", nargs: 1, run: func(m *migration.Migrator, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("step count %q: %w", args[0], err)
		}
		return m.Steps(n)
	}},
	"goto": {usage: "goto <version>", nargs: 1, run: func(m *migration.Migrator, args []string) error {
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("version %q: %w", args[0], err)
		}
		return m.GoTo(uint(v))
	}},
	"force": {usage: "force <version>", nargs: 1, run: func(m *migration.Migrator, args []string) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("version %q: %w", args[0], err)
		}
		return m.Force(v)
	}},
	"version": {usage: "version", run: func(m *migration.Migrator, _ []string) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if v == 0 {
			fmt.Println("no migrations applied")
			return nil
		}
		fmt.Printf("version %d (dirty=%t)\n", v, dirty)
		return nil
	}},
}

func main() {
	dir := flag.String("path", "", "Read migrations from a directory instead of the embedded set")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *dir != "" {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			log.Fatal("Invalid migrations path", zap.String("path", *dir), zap.Error(err))
		}
		*dir = abs
	}

	if err := run(log, *dir, args[0], args[1:]); err != nil {
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(log *zap.Logger, dir, name string, args []string) error {
	switch name {
	case "create":
		return create(log, dir, args)
	case "list":
		return list(dir)
	}

	cmd, ok := schemaCommands[name]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown command %q", name)
	}
	if len(args) < cmd.nargs {
		return fmt.Errorf("usage: migrate %s", cmd.usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	opts := []migration.Option{migration.WithLogger(log)}
	if dir != "" {
		opts = append(opts, migration.WithDirectory(dir))
	}
	m, err := migration.New(db, opts...)
	if err != nil {
		return err
	}
	defer m.Close()

	return cmd.run(m, args)
}

func create(log *zap.Logger, dir string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: migrate create <name> [description]")
	}
	if dir == "" {
		dir = sourceDir
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.Uint("version", mf.Version),
		zap.String("up", mf.UpPath),
		zap.String("down", mf.DownPath),
	)
	return nil
}

func list(dir string) error {
	var fsys fs.FS = migrations.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	infos, err := migration.ListMigrations(fsys)
	if err != nil {
		return err
	}
	for _, mi := range infos {
		down := ""
		if !mi.HasDown {
			down = " (no down)"
		}
		fmt.Printf("%06d  %s%s\n", mi.Version, mi.Name, down)
	}
	return nil
}

func printUsage() {
	fmt.Fprint(os.Stderr, `CDL admin schema migrations

Usage: migrate [-path dir] [-log-level level] <command> [args]

Commands:
  up                    apply every pending migration
  down                  revert every applied migration
  step <n>              apply n migrations, negative n reverts
  goto <version>        migrate to version
  force <version>       set the version without running SQL (clears dirty)
  version               print the current version
  create <name> [desc]  write the next up/down file pair
  list                  list migrations in the source

Migrations are read from the set embedded in the binary unless -path is
given. The database connection comes from CDL_DATABASE_HOST, _PORT, _USER,
_PASSWORD, _DBNAME and _SSLMODE, or config.toml.
`)
}
