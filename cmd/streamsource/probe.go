// ABOUTME: probe command reporting how the adapters see a media source
// ABOUTME: Prints loader content info and the byte count read through the pull source
package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/harper/stream-media-source/internal/application/config"
	"github.com/harper/stream-media-source/internal/domain"
	"github.com/harper/stream-media-source/internal/domain/media"
	"github.com/harper/stream-media-source/internal/infrastructure/datasource"
	"github.com/harper/stream-media-source/internal/infrastructure/resourceloader"
	"github.com/harper/stream-media-source/internal/infrastructure/source"
)

type probeOptions struct {
	contentType string
	buffer      bool
	timeout     time.Duration
	fs          afero.Fs
}

func newProbeCmd() *cobra.Command {
	opts := probeOptions{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "probe <path|url>",
		Short: "Inspect a media source through both adapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.contentType, "content-type", "", "content type to report (default application/octet-stream)")
	flags.BoolVar(&opts.buffer, "buffer", false, "download URLs into memory so they become seekable")
	flags.DurationVar(&opts.timeout, "connect-timeout", 10*time.Second, "connect timeout for URLs")
	return cmd
}

func runProbe(cmd *cobra.Command, target string, opts probeOptions) error {
	logger, err := setupLogging(cmd, config.LoggingConfig{Level: "warn"})
	if err != nil {
		return err
	}

	var provider domain.StreamProvider
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		provider = source.NewHTTP(source.HTTPConfig{
			URL:            target,
			ConnectTimeout: opts.timeout,
			Buffer:         opts.buffer,
		})
	} else {
		provider = source.NewFile(opts.fs, target)
	}

	it := media.New(media.Config{ID: "probe", ContentType: opts.contentType}, provider, logger)
	if err := it.Load(cmd.Context()); err != nil {
		return err
	}
	defer it.Close()

	info := &domain.ContentInfo{}
	err = it.WithLoader(func(l *resourceloader.Loader) error {
		l.FillContentInfo(info)
		return nil
	})
	if err != nil {
		return err
	}

	var total int64
	err = it.WithPull(func(src *datasource.Source) error {
		if _, err := src.Open(&domain.DataSpec{URI: it.URI(), Length: domain.LengthUnset}); err != nil {
			return err
		}
		defer src.Close()

		buf := make([]byte, 64*1024)
		for {
			n, err := src.Read(buf, 0, len(buf))
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			total += int64(n)
		}
	})
	if err != nil {
		return fmt.Errorf("read %s: %w", target, err)
	}

	length := "unknown"
	if info.ContentLength != domain.LengthUnset {
		length = fmt.Sprintf("%d (%s)", info.ContentLength, humanize.IBytes(uint64(info.ContentLength)))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "uri:          %s\n", it.URI())
	fmt.Fprintf(out, "content type: %s\n", info.ContentType)
	fmt.Fprintf(out, "length:       %s\n", length)
	fmt.Fprintf(out, "byte ranges:  %t\n", info.ByteRangeAccessSupported)
	fmt.Fprintf(out, "bytes read:   %d\n", total)
	return nil
}
