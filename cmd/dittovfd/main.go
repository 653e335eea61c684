// DittoVFD command line client
//
// Opens objects through the configured virtual file drivers the same way a
// host library would: probe the size once, then issue ranged reads.
//
// Sub-commands:
//
//	dittovfd init [-force] [-config path]         Write a sample configuration
//	dittovfd stat [flags] <bucket/key>            Print the object size
//	dittovfd read [flags] <bucket/key>            Read a byte range
//	dittovfd cmp [flags] <bucket/key> <bucket/key> Compare two open files
//
// Common flags: -config, -log-level, -driver.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/dittovfd/internal/logger"
	"github.com/marmos91/dittovfd/pkg/config"
	"github.com/marmos91/dittovfd/pkg/registry"
	"github.com/marmos91/dittovfd/pkg/vfd"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: dittovfd <command> [flags] [args]

Commands:
  init    write a sample configuration file
  stat    open an object and print its size
  read    read a byte range of an object
  cmp     compare the names of two open objects

Run 'dittovfd <command> -h' for command flags.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "init":
		err = cmdInit(os.Args[2:])
	case "stat":
		err = cmdStat(ctx, os.Args[2:])
	case "read":
		err = cmdRead(ctx, os.Args[2:])
	case "cmp":
		err = cmdCmp(ctx, os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	_ = logger.Sync()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	configPath := fs.String("config", "", "Where to write the file (default: $XDG_CONFIG_HOME/dittovfd/config.yaml)")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *configPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	if err := config.InitConfigToPath(path, *force); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

// session holds what every object command needs.
type session struct {
	reg    *registry.Registry
	driver *vfd.Driver
	props  *vfd.AccessProps
	cancel context.CancelFunc
}

type commonFlags struct {
	configPath string
	logLevel   string
	driver     string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/dittovfd/config.yaml)")
	fs.StringVar(&c.logLevel, "log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&c.driver, "driver", "", "Driver name (default: default_driver from config)")
}

// open loads the configuration and builds the driver registry.
func (c *commonFlags) open(ctx context.Context) (*session, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	s := &session{}

	// metrics first: drivers attach to the registry when they are created
	if result := config.InitializeMetrics(cfg); result.Server != nil {
		metricsCtx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		go func() {
			if err := result.Server.Start(metricsCtx); err != nil {
				logger.Warn("Metrics server: %v", err)
			}
		}()
	}

	s.reg, err = config.InitializeRegistry(ctx, cfg)
	if err != nil {
		s.close()
		return nil, err
	}

	if c.driver != "" {
		s.driver, err = s.reg.GetDriver(c.driver)
	} else {
		s.driver, err = s.reg.Default()
	}
	if err != nil {
		s.close()
		return nil, err
	}

	s.props, err = s.reg.AccessProps(s.driver.Name())
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func (s *session) openFile(ctx context.Context, name string) (*vfd.File, error) {
	return s.driver.Open(ctx, name, vfd.OpenReadOnly, s.props, vfd.MaxAddr)
}

func (s *session) close() {
	if s.reg != nil {
		if err := s.reg.Close(); err != nil {
			logger.Warn("Failed to close drivers: %v", err)
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func cmdStat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stat", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("stat: expected <bucket/key>")
	}

	s, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	f, err := s.openFile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Printf("%s\t%d\n", f.Name(), uint64(f.EOF()))
	return nil
}

func cmdRead(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("read", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	offset := fs.Uint64("offset", 0, "Byte offset to start reading at")
	size := fs.Int("size", 0, "Number of bytes to read (default: to end of object)")
	out := fs.String("out", "", "Write bytes to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("read: expected <bucket/key>")
	}
	if *size < 0 {
		return fmt.Errorf("read: -size must not be negative")
	}

	s, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	f, err := s.openFile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	n := uint64(*size)
	if n == 0 {
		eof := uint64(f.EOF())
		if *offset >= eof {
			return fmt.Errorf("read: offset %d is at or past the end of %s (%d bytes)", *offset, f.Name(), eof)
		}
		n = eof - *offset
	}

	buf := make([]byte, n)
	if err := f.Read(ctx, vfd.Addr(*offset), buf); err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		file, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer file.Close()
		w = file
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Debug("Read %d bytes from %s at offset %d", len(buf), f.Name(), *offset)
	return nil
}

func cmdCmp(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cmp", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("cmp: expected <bucket/key> <bucket/key>")
	}

	s, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	a, err := s.openFile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := s.openFile(ctx, fs.Arg(1))
	if err != nil {
		return err
	}
	defer b.Close()

	fmt.Println(a.Compare(b))
	return nil
}
