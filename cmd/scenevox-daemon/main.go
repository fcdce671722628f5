package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"scenevox/internal/assistant"
	"scenevox/internal/audio"
	"scenevox/internal/bridge"
	"scenevox/internal/config"
	"scenevox/internal/guard"
	"scenevox/internal/ipc"
	"scenevox/internal/llm"
	"scenevox/internal/notify"
	"scenevox/internal/proxy"
	"scenevox/internal/session"
	"scenevox/internal/tts"
	"scenevox/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	configPath := cli.StringP("config", "c", "scenevox.yaml", "Config file path")
	logLevel := cli.StringP("log", "l", "", "Log level override (debug|info|warn|error)")
	dryRun := cli.Bool("dry-run", false, "Never send scripts to the host bridge")
	cli.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = config.LogLevel(*logLevel)
	}
	if *dryRun {
		cfg.Bridge.DryRun = true
	}

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[string(cfg.LogLevel)],
	})))

	log.Info("Booting up")

	godotenv.Load(cfg.EnvFile)
	if cfg.ResolveAPIKey() == "" {
		log.Warn("No GEMINI_API_KEY found yet; prompts will fail until one is set")
	}

	httpClient, err := proxy.HTTPClient(cfg.Proxy, 120*time.Second)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", cfg.Proxy, "err", err)
		os.Exit(1)
	}

	var gen llm.Client = llm.NewGemini(cfg.ResolveAPIKey, httpClient)
	if cfg.OpenAIFallback {
		openaiKey := func() string { return os.Getenv("OPENAI_API_KEY") }
		gen = llm.NewFallback(gen, llm.NewOpenAI(openaiKey, cfg.OpenAIModel, httpClient))
		log.Debug("Loaded OpenAI fallback")
	}

	var rec assistant.Recorder
	recorder := audio.NewRecorder()
	if err := recorder.Init(); err != nil {
		log.Warn("No audio device; voice prompts disabled", "err", err)
	} else {
		rec = recorder
		defer recorder.Close()
		log.Debug("Loaded recorder")
	}

	var transcribe assistant.TranscribeFunc
	if cfg.Voice.WhisperModel != "" {
		whisper, err := stt.NewTranscriber(cfg.Voice.WhisperModel)
		if err != nil {
			log.Warn("Failed to init whisper; transcript will use a placeholder", "err", err)
		} else {
			defer whisper.Close()
			transcribe = func(ctx context.Context, pcm []float32) (string, error) {
				res, err := whisper.TranscribePCM(ctx, pcm, stt.Options{Language: "auto"})
				if err != nil {
					return "", err
				}
				return res.Text, nil
			}
			log.Debug("Loaded whisper")
		}
	}

	var exec assistant.Executor
	if !cfg.Bridge.DryRun {
		b, err := bridge.Dial(bridge.Config{
			URL:              cfg.Bridge.URL,
			ReconnectSeconds: cfg.Bridge.ReconnectSeconds,
		})
		if err != nil {
			log.Warn("Host bridge unreachable; running dry", "url", cfg.Bridge.URL, "err", err)
		} else {
			go b.Run()
			defer b.Close()
			exec = b
			log.Debug("Loaded host bridge")
		}
	}

	sess := session.New(cfg.Model)
	a := assistant.New(cfg, sess, gen, guard.New(cfg.Guard.AllowedImports), exec, rec, transcribe)

	ducker := audio.NewDucker([]string{"scenevox"}, cfg.Voice.DuckVolume)
	cue := func() {
		if cfg.Voice.CueSound == "" {
			return
		}
		if err := notify.Beep(cfg.Voice.CueSound); err != nil {
			log.Debug("Cue sound failed", "err", err)
		}
	}
	a.OnRecordStart = func() {
		_ = notify.Desktop("Listening...")
		cue()
		if err := ducker.Duck(context.Background(), 200*time.Millisecond); err != nil {
			log.Debug("Duck failed", "err", err)
		}
		if cfg.Voice.SpeakStatus {
			_ = tts.Speak("listening")
		}
	}
	a.OnRecordStop = func() {
		if err := ducker.Restore(context.Background(), 200*time.Millisecond); err != nil {
			log.Debug("Restore failed", "err", err)
		}
		cue()
		_ = notify.Desktop("Processing...")
	}

	ln, err := ipc.StartServer(cfg.SocketPath, commandHandler(a))
	if err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}
	defer ln.Close()

	log.Info("Boot up - successful", "socket", cfg.SocketPath, "model", cfg.Model)

	select {}
}

// commandHandler maps control commands onto assistant operations. Every
// failure is converted by the ipc layer into a plain status string; nothing
// here can take the daemon down.
func commandHandler(a *assistant.Assistant) ipc.Handler {
	return func(req ipc.Request) (ipc.Response, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		switch req.Cmd {
		case "ping":
			return ipc.Response{OK: true, Message: "pong"}, nil

		case "probe":
			if err := a.Probe(ctx); err != nil {
				return ipc.Response{}, err
			}
			return ipc.Response{OK: true, Message: "connection ok"}, nil

		case "prompt":
			out, err := a.RunPrompt(ctx, strings.Join(req.Args, " "))
			if err != nil {
				return ipc.Response{}, err
			}
			return ipc.Response{OK: true, Message: out}, nil

		case "audio":
			if len(req.Args) != 1 {
				return ipc.Response{OK: false, Message: "usage: audio <file>"}, nil
			}
			out, err := a.RunAudioFile(ctx, req.Args[0])
			if err != nil {
				return ipc.Response{}, err
			}
			return ipc.Response{OK: true, Message: out}, nil

		case "record":
			out, err := a.ToggleRecording(ctx)
			if err != nil {
				return ipc.Response{}, err
			}
			return ipc.Response{OK: true, Message: out}, nil

		case "model":
			if len(req.Args) != 1 {
				return ipc.Response{OK: true, Message: string(a.Session().Model())}, nil
			}
			m := config.Model(req.Args[0])
			if !m.IsValid() {
				return ipc.Response{OK: false, Message: "unknown model: " + req.Args[0]}, nil
			}
			a.Session().SetModel(m)
			return ipc.Response{OK: true, Message: "model set to " + req.Args[0]}, nil

		case "status":
			st, msg := a.Session().Status()
			lines := []string{
				"connection: " + string(st),
				"model:      " + string(a.Session().Model()),
			}
			if msg != "" {
				lines = append(lines, "last error: "+msg)
			}
			if a.Session().Recording() {
				lines = append(lines, "recording:  yes")
			}
			return ipc.Response{OK: true, Lines: lines}, nil

		case "transcript":
			var lines []string
			for _, e := range a.Session().Transcript() {
				lines = append(lines, e.At.Format("15:04:05")+" "+string(e.Role)+": "+e.Text)
			}
			if len(lines) == 0 {
				return ipc.Response{OK: true, Message: "transcript is empty"}, nil
			}
			return ipc.Response{OK: true, Lines: lines}, nil

		default:
			return ipc.Response{OK: false, Message: "unknown command: " + req.Cmd}, nil
		}
	}
}
