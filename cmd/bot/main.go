package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"signalbot/config"
	"signalbot/internal/broker"
	"signalbot/internal/engine"
	"signalbot/internal/ledger"
	"signalbot/internal/metrics"
	"signalbot/internal/model"
	"signalbot/internal/notification"
	sig "signalbot/internal/signal"
	"signalbot/internal/strategy"
	redisstore "signalbot/internal/store/redis"
	"signalbot/pkg/investlink"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Println("[bot] starting...")

	// ---- Load config from .env + environment ----
	if err := godotenv.Load(); err == nil {
		log.Println("[bot] loaded .env")
	}
	cfg := config.Load()

	instruments, err := config.LoadInstruments(cfg.InstrumentsPath)
	if err != nil {
		log.Fatalf("[bot] %v", err)
	}
	log.Printf("[bot] loaded %d instruments from %s", len(instruments), cfg.InstrumentsPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Metrics & health ----
	prom := metrics.New()
	health := metrics.NewHealthStatus()
	srv := metrics.NewServer(cfg.HTTPAddr, health)
	srv.Start()
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Stop(shutCtx)
	}()

	// ---- Broker session ----
	client, err := investlink.New(investlink.Config{
		Token:      cfg.BrokerToken,
		ClientCode: cfg.BrokerClientCode,
		Password:   cfg.BrokerPassword,
		TOTPSecret: cfg.BrokerTOTPSecret,
		RootURL:    cfg.BrokerRootURL,
		StreamURL:  cfg.BrokerStreamURL,
		AccountID:  cfg.BrokerAccountID,
	})
	if err != nil {
		log.Fatalf("[bot] %v", err)
	}
	if err := client.Login(ctx); err != nil {
		log.Fatalf("[bot] %v", err)
	}
	defer client.Logout(context.Background())
	health.SetBrokerConnected(true)

	// ---- Candle pipeline: REST source, redis cache, optional live stream ----
	rest := broker.NewCandleSource(client, prom)
	var fallback broker.Source = rest
	cache, err := redisstore.New(redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Printf("[bot] WARNING: redis unavailable: %v (candles served uncached)", err)
	} else {
		defer cache.Close()
		fallback = redisstore.NewCachedSource(rest, cache, prom)
		health.SetRedisConnected(true)
	}
	var candles strategy.CandleSource = fallback
	if cfg.BrokerStreamURL != "" {
		figisByInterval := make(map[model.Interval][]string)
		for _, inst := range instruments {
			if !inst.Enabled {
				continue
			}
			interval := model.Interval(inst.Interval)
			if inst.Interval == "" {
				interval = model.Interval5Min
			}
			figisByInterval[interval] = append(figisByInterval[interval], inst.Figi)
		}
		mux := broker.NewStreamMux(client, fallback, figisByInterval, 512)
		go mux.Run(ctx)
		candles = mux
		log.Println("[bot] live candle stream enabled")
	}

	// ---- Trade ledger ----
	os.MkdirAll(filepath.Dir(cfg.LedgerPath), 0o755)
	journal, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		log.Fatalf("[bot] open ledger: %v", err)
	}
	defer journal.Close()
	health.SetLedgerOK(true)

	// ---- Notifications ----
	backends := notification.MultiNotifier{notification.NewLogNotifier()}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		backends = append(backends, notification.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID))
		log.Println("[bot] telegram notifications enabled")
	}
	if cfg.WebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.WebhookURL))
		log.Println("[bot] webhook notifications enabled")
	}
	var notifier notification.Notifier = backends

	// ---- Order routing: real gateway, shared paper account for dry runs ----
	gateway := broker.NewGateway(client)
	portfolio := broker.NewAccountPortfolio(client)
	paperPortfolio := broker.NewPaperPortfolio(cfg.DryRunBalance)
	paperGateway := broker.NewDryRunGateway(paperPortfolio)

	// ---- Strategies ----
	strategies := make([]engine.Runner, 0, len(instruments))
	for _, inst := range instruments {
		sc := strategy.Config{
			Figi:       inst.Figi,
			Ticker:     inst.Ticker,
			Enabled:    inst.Enabled,
			Interval:   model.Interval(inst.Interval),
			Quantity:   inst.Quantity,
			FeePercent: inst.FeePercent,
			DryRun:     inst.DryRun,
			Signals:    inst.Signals,
		}
		if inst.BuyRule != nil {
			if sc.BuyRule, err = inst.BuyRule.Compile(inst.Signals); err != nil {
				log.Fatalf("[bot] %s: buy rule: %v", inst.Figi, err)
			}
		}
		if inst.SellRule != nil {
			if sc.SellRule, err = inst.SellRule.Compile(inst.Signals); err != nil {
				log.Fatalf("[bot] %s: sell rule: %v", inst.Figi, err)
			}
		}

		deps := strategy.Deps{
			Candles:   candles,
			Portfolio: portfolio,
			Orders:    gateway,
			Ledger:    journal,
			Notifier:  notifier,
			Metrics:   prom,
			Observer:  sig.NopObserver(),
		}
		if inst.DryRun {
			deps.Portfolio = paperPortfolio
			deps.Orders = paperGateway
		}

		s, err := strategy.New(sc, deps)
		if err != nil {
			log.Fatalf("[bot] %s: %v", inst.Figi, err)
		}
		strategies = append(strategies, s)
		log.Printf("[bot] %s (%s): enabled=%v dry_run=%v signals=%v",
			inst.Ticker, inst.Figi, inst.Enabled, inst.DryRun, inst.Signals.Names())
	}

	// ---- Run ----
	eng := engine.New(strategies, cfg.CycleInterval,
		engine.WithMetrics(prom),
		engine.WithHealth(health),
	)
	if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("[bot] %v", err)
	}
	log.Println("[bot] shutdown complete.")
}
