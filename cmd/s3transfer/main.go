// Command s3transfer moves files between the local filesystem and an
// S3-compatible object store. Credentials come from S3_KEY_ID and
// S3_KEY_SECRET, optionally loaded from a .env file.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/objecthaul/s3transfer"
	"github.com/objecthaul/s3transfer/transfertypes"
)

func newBucketFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "bucket",
		Usage:    "Target bucket name",
		Required: true,
		EnvVars:  []string{"S3_BUCKET"},
	}
}

func newClient(c *cli.Context) (*s3transfer.Client, error) {
	opts := []transfertypes.Option{}
	if region := c.String("region"); region != "" {
		opts = append(opts, s3transfer.WithRegion(region))
	}
	if endpoint := c.String("endpoint"); endpoint != "" {
		opts = append(opts,
			s3transfer.WithEndpoint(endpoint),
			s3transfer.WithForcePathStyle(true),
		)
	}

	client, err := s3transfer.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func newLogger(c *cli.Context) zerolog.Logger {
	level := zerolog.InfoLevel
	if c.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List object keys in the bucket",
		Flags: []cli.Flag{
			newBucketFlag(),
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "Only list keys under this prefix",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Follow pagination and list every matching key",
			},
		},
		Action: func(c *cli.Context) error {
			logger := newLogger(c)

			client, err := newClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			bucket := c.String("bucket")
			prefix := c.String("prefix")

			var keys []string
			if c.Bool("all") {
				keys, err = client.ListAllKeys(c.Context, bucket, prefix)
			} else {
				keys, err = client.ListKeys(c.Context, bucket, prefix)
			}
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}

			logger.Debug().Str("bucket", bucket).Str("prefix", prefix).Int("count", len(keys)).Msg("listed objects")
			for _, key := range keys {
				fmt.Println(key)
			}
			return nil
		},
	}
}

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a local file; its path becomes the object key",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			newBucketFlag(),
		},
		Action: func(c *cli.Context) error {
			logger := newLogger(c)

			if c.NArg() != 1 {
				return cli.Exit("usage: upload <path>", 1)
			}
			path := c.Args().First()

			client, err := newClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.UploadFile(c.Context, c.String("bucket"), path)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			logger.Info().
				Str("key", result.Key).
				Int64("size", result.Size).
				Str("content_type", result.ContentType).
				Dur("duration", result.Duration).
				Msg("uploaded")
			return nil
		},
	}
}

func putCommand() *cli.Command {
	return &cli.Command{
		Name:      "put",
		Usage:     "Upload stdin to the given key",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			newBucketFlag(),
			&cli.StringFlag{
				Name:  "content-type",
				Usage: "Override content type inference",
			},
		},
		Action: func(c *cli.Context) error {
			logger := newLogger(c)

			if c.NArg() != 1 {
				return cli.Exit("usage: put <key>", 1)
			}
			key := c.Args().First()

			client, err := newClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			opts := []transfertypes.UploadOption{}
			if ct := c.String("content-type"); ct != "" {
				opts = append(opts, s3transfer.WithContentType(ct))
			}

			result, err := client.Upload(c.Context, c.String("bucket"), key, os.Stdin, opts...)
			if err != nil {
				return fmt.Errorf("put failed: %w", err)
			}

			logger.Info().
				Str("key", result.Key).
				Int64("size", result.Size).
				Dur("duration", result.Duration).
				Msg("uploaded")
			return nil
		},
	}
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download an object into a local directory",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			newBucketFlag(),
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Destination directory (must exist)",
				Value: ".",
			},
			&cli.BoolFlag{
				Name:  "atomic",
				Usage: "Write via a temporary file and rename on success",
			},
		},
		Action: func(c *cli.Context) error {
			logger := newLogger(c)

			if c.NArg() != 1 {
				return cli.Exit("usage: download <key>", 1)
			}
			key := c.Args().First()

			client, err := newClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			opts := []transfertypes.DownloadOption{}
			if c.Bool("atomic") {
				opts = append(opts, s3transfer.WithAtomicWrite())
			}

			result, err := client.DownloadFile(c.Context, c.String("bucket"), key, c.String("dir"), opts...)
			if err != nil {
				return fmt.Errorf("download failed: %w", err)
			}

			logger.Info().
				Str("key", result.Key).
				Str("path", result.Path).
				Int64("size", result.Size).
				Dur("duration", result.Duration).
				Msg("downloaded")
			return nil
		},
	}
}

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:      "demo",
		Usage:     "List the bucket, upload a file, then download it back",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			newBucketFlag(),
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Destination directory for the download step (must exist)",
				Value: "data",
			},
		},
		Action: func(c *cli.Context) error {
			logger := newLogger(c)

			if c.NArg() != 1 {
				return cli.Exit("usage: demo <path>", 1)
			}
			path := c.Args().First()
			bucket := c.String("bucket")

			client, err := newClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			keys, err := client.ListKeys(c.Context, bucket, "")
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}
			logger.Info().Int("count", len(keys)).Msg("objects in bucket")
			for _, key := range keys {
				fmt.Println(key)
			}

			uploaded, err := client.UploadFile(c.Context, bucket, path)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}
			logger.Info().Str("key", uploaded.Key).Int64("size", uploaded.Size).Msg("uploaded")

			downloaded, err := client.DownloadFile(c.Context, bucket, uploaded.Key, c.String("dir"))
			if err != nil {
				return fmt.Errorf("download failed: %w", err)
			}
			logger.Info().Str("path", downloaded.Path).Int64("size", downloaded.Size).Msg("downloaded")

			return nil
		},
	}
}

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load(".env")

	app := &cli.App{
		Name:  "s3transfer",
		Usage: "Move files between the local filesystem and an S3-compatible store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "region",
				Usage:   "AWS region",
				EnvVars: []string{"S3_REGION", "AWS_REGION"},
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "Custom endpoint for S3-compatible stores",
				EnvVars: []string{"S3_ENDPOINT"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			listCommand(),
			uploadCommand(),
			putCommand(),
			downloadCommand(),
			demoCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
