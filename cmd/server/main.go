package main

import (
	"errors"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/config"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/infrastructure/storage"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/server"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/version"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/logger"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/utils"
)

// Коды выхода: 0 — штатно, 2 — невалидная конфигурация,
// 3 — нечитаемый сейв.
const (
	exitOK              = 0
	exitInvalidConfig   = 2
	exitCorruptSave     = 3
	defaultSnapshotName = "session.json"
)

func init() {
	logger.Init()
}

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Парсинг флагов. Запоминаем, какие переданы явно: только они
	// перекрывают файл и окружение.
	var (
		configPath    string
		seed          int64
		seedPhrase    string
		worldSize     int
		loadingRadius int
		maxResident   int
		hysteresis    float64
		dwellUp       float64
		dwellDown     float64
		port          string
		saveDir       string
		loadSave      string
	)
	flag.StringVar(&configPath, "config", "", "Path to keyed JSON config file")
	flag.Int64Var(&seed, "seed", 0, "Master world seed (0 for random)")
	flag.StringVar(&seedPhrase, "seed-phrase", "", "Human-readable phrase hashed into the master seed")
	flag.IntVar(&worldSize, "world-size", 0, "World radius in hexes (D_max)")
	flag.IntVar(&loadingRadius, "loading-radius", 0, "Chunk loading radius (Chebyshev)")
	flag.IntVar(&maxResident, "max-resident-tiles", 0, "Resident tile budget")
	flag.Float64Var(&hysteresis, "dread-hysteresis", 0, "Dread hysteresis margin H")
	flag.Float64Var(&dwellUp, "dwell-up", 0, "Seconds above threshold before promotion")
	flag.Float64Var(&dwellDown, "dwell-down", 0, "Seconds below threshold before demotion")
	flag.StringVar(&port, "port", "", "HTTP port")
	flag.StringVar(&saveDir, "save-dir", "", "Snapshot directory")
	flag.StringVar(&loadSave, "load", "", "Snapshot file to restore (relative to save dir)")
	flag.Parse()

	logger.Log.Info("Запуск ядра оркестрации ужаса...")
	logger.Log.Info(version.String())

	// 2. Конфиг: defaults <- file <- env <- явные флаги.
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Log.WithError(err).Error("конфигурация не прочитана")
		return exitInvalidConfig
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed = seed
		case "seed-phrase":
			cfg.Seed = utils.StringToSeed(seedPhrase)
		case "world-size":
			cfg.WorldSize = worldSize
		case "loading-radius":
			cfg.LoadingRadius = loadingRadius
		case "max-resident-tiles":
			cfg.MaxResident = maxResident
		case "dread-hysteresis":
			cfg.Hysteresis = hysteresis
		case "dwell-up":
			cfg.DwellUp = dwellUp
		case "dwell-down":
			cfg.DwellDown = dwellDown
		case "port":
			cfg.Port = port
		case "save-dir":
			cfg.SaveDir = saveDir
		}
	})

	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Error("невалидная конфигурация")
		return exitInvalidConfig
	}

	if cfg.Seed == 0 {
		cfg.Seed = rand.New(rand.NewSource(time.Now().UnixNano())).Int63()
		logger.Log.Infof("🎲 Случайный мастер-сид: %d", cfg.Seed)
	} else {
		logger.Log.Infof("🎲 Явный мастер-сид: %d", cfg.Seed)
	}

	// 3. Ядро.
	core := engine.NewService(cfg)
	core.Bootstrap()

	saves := storage.NewSaveService(cfg.SaveDir)
	if loadSave != "" {
		snap, err := saves.Load(filepath.Join(cfg.SaveDir, loadSave))
		if err != nil {
			if errors.Is(err, domain.ErrPersistenceCorrupt) {
				logger.Log.WithError(err).Error("сейв поврежден")
				return exitCorruptSave
			}
			logger.Log.WithError(err).Error("сейв не прочитан")
			return exitCorruptSave
		}
		if snap.Seed != cfg.Seed {
			logger.Log.Infof("Сид из сейва: %d", snap.Seed)
			cfg.Seed = snap.Seed
			core = engine.NewService(cfg)
			core.Bootstrap()
		}
		core.RestoreSnapshot(snap)
		logger.Log.WithField("tick", snap.Tick).Info("Сейв восстановлен")
	}

	core.Start()

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 4. HTTP + WebSocket.
	srv := server.New(core, cfg.Port)
	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("Server start error:", err)
		}
	}()

	<-stop
	logger.Log.Info("Остановка...")

	core.Stop()
	if err := saves.Save(defaultSnapshotName, core.BuildSnapshot()); err != nil {
		logger.Log.WithError(err).Error("снапшот не записан")
	}

	logger.Log.Info("Готово.")
	return exitOK
}
