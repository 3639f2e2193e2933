package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/vkngwrapper/hellotriangle/internal/app"
	"github.com/vkngwrapper/hellotriangle/internal/assets"
	"github.com/vkngwrapper/hellotriangle/internal/config"
	"github.com/vkngwrapper/hellotriangle/internal/frame"
	"github.com/vkngwrapper/hellotriangle/internal/vulkan"
	"github.com/vkngwrapper/hellotriangle/internal/window"
)

func init() {
	// SDL and the Vulkan surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	envFiles := flag.String("env", "", "comma separated .env files to load before reading HELLO_* variables")
	flag.Parse()

	cfg, err := config.Load(splitList(*envFiles)...)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = run(ctx, cfg, logger)
	if err != nil {
		stop()
		exitOnError(logger, err)
	}
}

// exitOnError reports err through the configured logger, with the stack trace
// cockroachdb/errors recorded, and exits non-zero.
func exitOnError(logger *logrus.Logger, err error) {
	logger.WithError(err).Fatalf("%+v", err)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func run(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	scene, err := assets.Load(ctx, assets.Paths{
		Model:    cfg.Path(cfg.Model),
		Material: cfg.Path(cfg.Material),
		Texture:  cfg.Path(cfg.Texture),
	})
	if err != nil {
		return errors.Wrap(err, "load assets")
	}
	logger.WithFields(logrus.Fields{
		"vertices": len(scene.Mesh.Vertices),
		"indices":  len(scene.Mesh.Indices),
		"texture":  frame.Extent{Width: scene.Texture.Width, Height: scene.Texture.Height},
	}).Info("assets loaded")

	win, err := window.Open(cfg.Title, cfg.Width, cfg.Height, logger.WithField("component", "window"))
	if err != nil {
		return err
	}
	defer win.Close()

	renderer, err := vulkan.New(win, scene, vulkan.Options{
		ApplicationName: cfg.Title,
		Validation:      cfg.Validation,
		PreferMailbox:   cfg.PreferMailbox,
		Multisample:     cfg.Multisample,
		VertexShader:    cfg.Path(cfg.VertexShader),
		FragmentShader:  cfg.Path(cfg.FragmentShader),
		PipelineCache:   cfg.PipelineCache,
	}, logger.WithField("component", "vulkan"))
	if err != nil {
		return errors.Wrap(err, "init vulkan")
	}
	defer renderer.Close()

	presenter, err := frame.NewPresenter(renderer, renderer, win.DrawableSize(), logger.WithField("component", "presenter"))
	if err != nil {
		return err
	}

	loop := app.NewLoop(win, presenter, cfg.StatsInterval, logger)
	return loop.Run(ctx)
}
