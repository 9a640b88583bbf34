// fluxgo decodes SuperCard Pro flux captures into raw MFM disk images.
//
// Images are read from the local filesystem or, with an s3://bucket/key
// URL, from S3. Compressed captures are decompressed transparently.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/pflag"

	"github.com/fluxgo/fluxgo"
	s3store "github.com/fluxgo/fluxgo/imagestore/s3"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage(os.Stderr)
		return errors.New("missing command")
	}
	switch args[0] {
	case "info":
		return runInfo(args[1:])
	case "decode":
		return runDecode(args[1:])
	case "help", "-h", "--help":
		usage(os.Stdout)
		return nil
	default:
		usage(os.Stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runInfo(args []string) error {
	flags := pflag.NewFlagSet("fluxgo info", pflag.ContinueOnError)
	tracks := flags.Bool("tracks", false, "dump every recorded track's revolutions")
	logLevel := flags.String("log-level", "", "log at this level (debug, info, warn, error)")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("usage: fluxgo info [flags] <image>")
	}

	opts, err := decoderOptions(*logLevel, false)
	if err != nil {
		return err
	}

	ctx := context.Background()
	d, err := openImage(ctx, flags.Arg(0), opts)
	if err != nil {
		return err
	}
	defer d.Close()

	d.Info(os.Stdout)
	if *tracks {
		for _, tn := range d.File().PresentTracks().ToArray() {
			if err := d.TrackInfo(os.Stdout, int(tn)); err != nil {
				return err
			}
		}
	}
	return nil
}

func runDecode(args []string) error {
	flags := pflag.NewFlagSet("fluxgo decode", pflag.ContinueOnError)
	revolution := flags.IntP("revolution", "r", 0, "revolution to decode")
	verify := flags.Bool("verify-checksum", false, "verify the image checksum before decoding")
	logLevel := flags.String("log-level", "", "log at this level (debug, info, warn, error)")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() != 2 {
		return errors.New("usage: fluxgo decode [flags] <image> <output.mfm>")
	}

	opts, err := decoderOptions(*logLevel, *verify)
	if err != nil {
		return err
	}

	ctx := context.Background()
	d, err := openImage(ctx, flags.Arg(0), opts)
	if err != nil {
		return err
	}
	defer d.Close()

	var out io.Writer = os.Stdout
	closeOut := func() error { return nil }
	if target := flags.Arg(1); target != "-" {
		f, err := os.Create(target)
		if err != nil {
			return err
		}
		out = f
		closeOut = f.Close
	}

	if err := d.WriteMFM(out, *revolution); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}

// decoderOptions translates command line flags into decoder options.
func decoderOptions(logLevel string, verify bool) ([]fluxgo.Option, error) {
	opts := []fluxgo.Option{fluxgo.WithVerifyChecksum(verify)}
	if logLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return nil, fmt.Errorf("bad log level %q", logLevel)
		}
		opts = append(opts, fluxgo.WithLogLevel(level))
	}
	return opts, nil
}

// openImage opens a capture by local path or s3://bucket/key URL.
func openImage(ctx context.Context, path string, opts []fluxgo.Option) (*fluxgo.Decoder, error) {
	rest, ok := strings.CutPrefix(path, "s3://")
	if !ok {
		return fluxgo.Open(path, opts...)
	}

	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("bad image URL %q, want s3://bucket/key", path)
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	store := s3store.NewStore(s3.NewFromConfig(cfg), bucket, "")
	return fluxgo.OpenStore(ctx, store, key, opts...)
}

func usage(w io.Writer) {
	fmt.Fprint(w, `fluxgo decodes SuperCard Pro flux captures into raw MFM disk images.

Usage:
  fluxgo info [flags] <image>                  print the image header
  fluxgo decode [flags] <image> <output.mfm>   decode one revolution

Images are read from the local filesystem, or from S3 with an
s3://bucket/key URL. Gzip, zstd and lz4 compressed captures are
decompressed transparently. Pass "-" as the decode output to write the
disk image to stdout.

Flags (info):
      --tracks             dump every recorded track's revolutions
      --log-level string   log at this level (debug, info, warn, error)

Flags (decode):
  -r, --revolution int     revolution to decode (default 0)
      --verify-checksum    verify the image checksum before decoding
      --log-level string   log at this level (debug, info, warn, error)
`)
}
