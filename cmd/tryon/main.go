package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"sentraSalon/internal/cache"
	"sentraSalon/internal/config"
	"sentraSalon/internal/media"
	"sentraSalon/internal/media/webpcopy"
	"sentraSalon/internal/prompts"
	"sentraSalon/internal/storage"
	"sentraSalon/internal/transform"
	"sentraSalon/internal/vision"
)

type cliFlags struct {
	configPath     string
	subjectPath    string
	refPath        string
	description    string
	template       string
	hairColor      string
	hairLength     string
	occasion       string
	preserveColor  bool
	promptOverride string
	backendName    string
	outDir         string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func parseFlags(args []string) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("tryon", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "config.yaml", "Path to config.yaml")
	fs.StringVar(&f.subjectPath, "subject", "", "Photo of the person to restyle")
	fs.StringVar(&f.refPath, "reference", "", "Optional photo of the target hairstyle")
	fs.StringVar(&f.description, "description", "", "Hairstyle description")
	fs.StringVar(&f.template, "template", "", "Named hairstyle template, e.g. \"Pixie Cut\"")
	fs.StringVar(&f.hairColor, "hair-color", "", "Target hair color, e.g. \"Blonde\"")
	fs.StringVar(&f.hairLength, "hair-length", "", "Target hair length, e.g. \"Short\"")
	fs.StringVar(&f.occasion, "occasion", "", "Occasion the style is for, e.g. \"Wedding\"")
	fs.BoolVar(&f.preserveColor, "preserve-color", false, "Keep the subject's current hair color")
	fs.StringVar(&f.promptOverride, "prompt-override", "", "Send this prompt verbatim instead of the built one")
	fs.StringVar(&f.backendName, "backend", "", "Backend name (defaults to the configured default)")
	fs.StringVar(&f.outDir, "out", "", "Directory for uploads/ and outputs/ (defaults to MEDIA_DIR)")
	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	if strings.TrimSpace(f.subjectPath) == "" {
		return cliFlags{}, errors.New("subject is required (use -subject)")
	}
	return f, nil
}

func (f cliFlags) options() prompts.Options {
	return prompts.Options{
		PromptOverride: f.promptOverride,
		Template:       f.template,
		HairColor:      f.hairColor,
		HairLength:     f.hairLength,
		Occasion:       f.occasion,
		PreserveColor:  f.preserveColor,
	}
}

func run(args []string) int {
	f, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		log.Printf("tryon: %v", err)
		return 2
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		log.Printf("load config: %v", err)
		return 1
	}
	if strings.TrimSpace(f.outDir) != "" {
		cfg.Media.Dir = f.outDir
	}

	subject, subjectMIME, err := readImage(f.subjectPath)
	if err != nil {
		log.Printf("read subject: %v", err)
		return 1
	}
	req := transform.Request{
		SubjectImage: subject,
		SubjectMIME:  subjectMIME,
		Description:  f.description,
		Options:      f.options(),
	}
	if f.refPath != "" {
		req.ReferenceImage, req.ReferenceMIME, err = readImage(f.refPath)
		if err != nil {
			log.Printf("read reference: %v", err)
			return 1
		}
	}

	ctx := context.Background()
	backends, err := vision.NewBackends(ctx, cfg, cache.Noop{})
	if err != nil {
		log.Printf("init backends: %v", err)
		return 1
	}
	defer backends.Close()

	catalog, err := prompts.LoadCatalog(cfg.TemplatesFile)
	if err != nil {
		log.Printf("load templates: %v", err)
		return 1
	}

	uploader, err := media.NewLocalUploader(cfg.Media.Dir)
	if err != nil {
		log.Printf("init media dir: %v", err)
		return 1
	}

	service := &transform.Service{
		Backends: backends.Registry,
		Media:    uploader,
		History:  storage.NewInMemoryStore(1),
		Catalog:  catalog,
		Timeout:  cfg.RequestTimeout(),
	}
	if cfg.Media.WebPCopy {
		service.WebPCopy = webpcopy.Encoder(float32(cfg.Media.WebPQuality))
	}

	outcome, err := service.Run(ctx, f.backendName, req)
	if err != nil {
		log.Printf("run: %v", err)
		return 1
	}

	fmt.Printf("backend: %s\n", outcome.Backend)
	fmt.Printf("status: %s\n", outcome.Result.Kind)
	switch outcome.Result.Kind {
	case transform.KindSuccess:
		fmt.Printf("output: %s\n", filepath.Join(uploader.BaseDir, filepath.FromSlash(outcome.Output.Key)))
		if outcome.WebP.Key != "" {
			fmt.Printf("webp: %s\n", filepath.Join(uploader.BaseDir, filepath.FromSlash(outcome.WebP.Key)))
		}
	case transform.KindTextOnly:
		fmt.Printf("explanation: %s\n", outcome.Result.Explanation)
	default:
		fmt.Printf("error: %s: %s\n", outcome.Result.ErrorKind, outcome.Result.Message)
		return 1
	}
	return 0
}

func readImage(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%s is empty", path)
	}
	return data, http.DetectContentType(data), nil
}
