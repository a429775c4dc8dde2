package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	xmpsidecar "github.com/menta2k/xmp-sidecar"
	"github.com/menta2k/xmp-sidecar/internal/config"
	"github.com/menta2k/xmp-sidecar/internal/utils"
	"github.com/menta2k/xmp-sidecar/pkg/batch"
	"github.com/menta2k/xmp-sidecar/pkg/blacklist"
	"github.com/menta2k/xmp-sidecar/pkg/exiftool"
	"github.com/menta2k/xmp-sidecar/pkg/sidecar"
	"github.com/menta2k/xmp-sidecar/pkg/tagsource"
	"github.com/menta2k/xmp-sidecar/pkg/types"
)

func main() {
	var dir, configPath, blacklistFile, blacklistTags, tagsExt, exiftoolPath string
	var overwrite, skipExisting, noBlacklist, embeddedTags, saveConfig, quiet, showVersion bool
	var workers int

	flag.StringVar(&dir, "dir", "", "directory of images to process (recursive)")
	flag.StringVar(&configPath, "config", "", "path to a JSON config file")
	flag.BoolVar(&saveConfig, "save-config", false, "write the effective config to the default location and exit")

	flag.BoolVar(&overwrite, "overwrite", false, "replace existing sidecar files")
	flag.BoolVar(&skipExisting, "skip-existing", false, "skip images that already have a sidecar")
	flag.IntVar(&workers, "workers", 0, "concurrent workers (0 = auto)")

	flag.StringVar(&blacklistFile, "blacklist", "", "path to a newline-separated tag blacklist file")
	flag.StringVar(&blacklistTags, "blacklist-tags", "", "comma-separated tags added to the built-in blacklist")
	flag.BoolVar(&noBlacklist, "no-blacklist", false, "disable tag filtering entirely")

	flag.StringVar(&tagsExt, "tags-ext", ".txt", "caption file extension holding each image's tags")
	flag.BoolVar(&embeddedTags, "embedded-tags", false, "fall back to keywords embedded in the image when no caption file exists")

	flag.StringVar(&exiftoolPath, "exiftool", "", "path to the exiftool binary (default: PATH lookup)")
	flag.BoolVar(&quiet, "quiet", false, "suppress per-image output")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")

	flag.Parse()

	if showVersion {
		fmt.Printf("xmp-sidecar %s\n", xmpsidecar.Version)
		return
	}

	cfg := loadConfig(configPath)

	// Explicit flags override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "overwrite":
			cfg.Sidecar.Overwrite = overwrite
		case "skip-existing":
			cfg.Sidecar.SkipExisting = skipExisting
		case "workers":
			cfg.Sidecar.Workers = workers
		case "blacklist":
			cfg.Blacklist.File = blacklistFile
		case "blacklist-tags":
			cfg.Blacklist.Tags = splitTags(blacklistTags)
		case "no-blacklist":
			cfg.Blacklist.Enabled = !noBlacklist
		case "tags-ext":
			cfg.Tags.CaptionExt = tagsExt
		case "embedded-tags":
			cfg.Tags.UseEmbedded = embeddedTags
		case "exiftool":
			cfg.Exiftool.Path = exiftoolPath
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if saveConfig {
		path := config.GetConfigPath()
		if err := cfg.SaveToFile(path); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}
		fmt.Printf("Wrote config to %s\n", path)
		return
	}

	if dir == "" {
		log.Fatalf("usage: %s -dir photos/ [-overwrite] [-skip-existing] [-workers 4] [-blacklist tags.txt] [-tags-ext .txt] [-embedded-tags]",
			filepath.Base(os.Args[0]))
	}
	if !utils.DirExists(dir) {
		log.Fatalf("Directory not found: %s", dir)
	}

	runner := exiftool.NewCommandRunner(cfg.Exiftool.Path)
	if !runner.Available() {
		log.Fatalf("Error: 'exiftool' command not found. Please ensure it is installed and in your system's PATH.")
	}

	images, skipped := collectImages(dir, cfg)
	if len(images) == 0 {
		log.Printf("No tagged images found in %s", dir)
		return
	}
	log.Printf("Found %d tagged images (%d skipped)", len(images), skipped)

	engine, err := xmpsidecar.New(xmpsidecar.Options{
		Format:        cfg.Sidecar.Format,
		Overwrite:     cfg.Sidecar.Overwrite,
		BlacklistFile: blacklistSelector(cfg),
		BlacklistTags: cfg.Blacklist.Tags,
		Workers:       cfg.Sidecar.Workers,
		FlushEvery:    cfg.Sidecar.FlushEvery,
		ExiftoolPath:  cfg.Exiftool.Path,
	})
	if err != nil {
		log.Fatal(err)
	}

	var events batch.Events
	if !quiet {
		events.Log = func(batched string) {
			fmt.Println(batched)
		}
		events.Progress = func(completed, total int, name string) {
			log.Printf("Processing: %s (%d/%d)", name, completed, total)
		}
	}

	run := engine.NewRun(events)

	// Signals request cancellation but never reach the run context, so
	// an in-flight exiftool invocation always finishes its write.
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run.Start(context.Background(), images); err != nil {
		log.Fatal(err)
	}

	go func() {
		<-sigCtx.Done()
		if err := run.Cancel(); err == nil {
			log.Println("Cancellation requested, finishing in-flight images...")
		}
	}()

	summary := run.Wait()
	printSummary(summary, skipped)
	if summary.Errors > 0 {
		os.Exit(1)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// blacklistSelector translates the config's enabled/file pair into the
// single selector string the filter expects.
func blacklistSelector(cfg *config.Config) string {
	if !cfg.Blacklist.Enabled {
		return blacklist.Disabled
	}
	return cfg.Blacklist.File
}

func splitTags(s string) []string {
	var tags []string
	for _, chunk := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(chunk); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// collectImages scans the directory, attaches tags from the configured
// sources, and applies the skip-existing policy. Images without tags are
// counted as skipped rather than failed.
func collectImages(dir string, cfg *config.Config) ([]types.Image, int) {
	files, err := utils.ListImageFiles(dir)
	if err != nil {
		log.Fatalf("Failed to scan %s: %v", dir, err)
	}

	captions := tagsource.CaptionFile{Ext: cfg.Tags.CaptionExt}

	var embedded *tagsource.Embedded
	if cfg.Tags.UseEmbedded {
		embedded, err = tagsource.NewEmbedded()
		if err != nil {
			log.Fatalf("Failed to start embedded tag extraction: %v", err)
		}
		defer embedded.Close()
	}

	var images []types.Image
	skipped := 0
	for _, file := range files {
		hasSidecar := utils.FileExists(sidecar.SidecarPath(file))
		if cfg.Sidecar.SkipExisting && hasSidecar {
			skipped++
			continue
		}

		tags, err := captions.Tags(file)
		if err != nil {
			log.Printf("Warning: %v", err)
		}
		if len(tags) == 0 && embedded != nil {
			tags, err = embedded.Tags(file)
			if err != nil {
				log.Printf("Warning: %v", err)
			}
		}
		if len(tags) == 0 {
			skipped++
			continue
		}

		images = append(images, types.Image{
			Path:       file,
			Tags:       tags,
			HasSidecar: hasSidecar,
		})
	}
	return images, skipped
}

func printSummary(summary types.Summary, skipped int) {
	fmt.Println()
	if summary.Cancelled {
		fmt.Println("Batch cancelled.")
	}
	fmt.Printf("Successfully created %d xmp files\n", summary.Processed)
	if summary.Errors > 0 {
		fmt.Printf("Errors: %d\n", summary.Errors)
	}
	if skipped > 0 {
		fmt.Printf("Skipped: %d\n", skipped)
	}
}
