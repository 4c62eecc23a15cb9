package main

import (
	"context"
	"embed"
	"log"
	"os"
	"path/filepath"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"

	"github.com/jhleao/teapot-sub006/internal/config"
	gitclient "github.com/jhleao/teapot-sub006/internal/git/client"
	"github.com/jhleao/teapot-sub006/internal/logging"
	"github.com/jhleao/teapot-sub006/internal/projects"
	"github.com/jhleao/teapot-sub006/internal/repos"
	"github.com/jhleao/teapot-sub006/internal/storage"
	"github.com/jhleao/teapot-sub006/internal/storage/catalog"
	"github.com/jhleao/teapot-sub006/internal/storage/migrate"
	"github.com/jhleao/teapot-sub006/internal/storage/sqlite"
	term "github.com/jhleao/teapot-sub006/internal/terminal"
	"github.com/jhleao/teapot-sub006/internal/ui"
	"github.com/jhleao/teapot-sub006/internal/watchers"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		log.Fatalf("config dir: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var logger logging.Logger
	if cfg.Log.Format == "json" {
		logger = logging.NewJSON(os.Stdout, logging.ParseLevel(cfg.Log.Level))
	} else {
		logger = logging.NewText(os.Stdout, logging.ParseLevel(cfg.Log.Level))
	}

	var git gitclient.Client
	if cfg.Backend == "gogit" {
		git = gitclient.NewGoGitClient()
	} else {
		git = gitclient.NewExecClient(cfg.GitBin)
	}

	dataDir, err := storage.DataDir()
	if err != nil {
		log.Fatalf("data dir: %v", err)
	}
	db, err := sqlite.Open(filepath.Join(dataDir, "catalog.db"))
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	if err := migrate.Up(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	app := NewApp()

	recents := projects.NewService(catalog.NewStore(db), logger)
	projectsAPI := projects.NewAPI(recents, logger)

	watcherSvc := watchers.New(nil)
	watcherSvc.SetLogger(logger)
	watcherSvc.SetDebounce(cfg.Debounce())

	repoSvc := repos.NewService(git, logger)
	reposAPI := repos.NewAPI(repoSvc, recents, watcherSvc, app.Context, logger)
	watcherSvc.SetEmitter(reposAPI.EmitRepoChanged)

	termMgr := term.NewManager(app.Context, "", logger)
	termAPI := term.NewAPI(termMgr)
	uiAPI := ui.NewAPI(app.Context, logger)

	err = wails.Run(&options.App{
		Title:  "teapot",
		Width:  1440,
		Height: 900,
		Linux: &linux.Options{
			WebviewGpuPolicy: linux.WebviewGpuPolicyAlways,
		},
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 24, G: 26, B: 33, A: 1},
		OnStartup:        app.startup,
		OnShutdown: func(ctx context.Context) {
			watcherSvc.Stop()
			termMgr.CloseAll()
			_ = db.Close()
		},
		Bind: []interface{}{reposAPI, projectsAPI, termAPI, uiAPI},
	})
	if err != nil {
		logger.Error("wails run failed", "error", err)
	}
}
