package config

const (
	defaultUploadDir         = "~/.local/share/scribe/uploads"
	defaultOutputDir         = "~/.local/share/scribe/outputs"
	defaultLogDir            = "~/.local/share/scribe/logs"
	defaultMaxUploadMB       = 500
	defaultWhisperBinary     = "whisper"
	defaultWhisperModel      = "base"
	defaultBeamSize          = 3
	defaultBestOf            = 3
	defaultTemperature       = "0.0"
	defaultDiarizeBinary     = "pyannote-audio"
	defaultDownloaderBinary  = "yt-dlp"
	defaultDownloaderFormat  = "bestaudio/best"
	defaultDownloaderTimeout = 30
	defaultDownloaderRetries = 3
	defaultFFmpegBinary      = "ffmpeg"
	defaultMP3Bitrate        = "128k"
	defaultWorkers           = 2
	defaultQueuePollInterval = 5
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

func defaultExtensions() []string {
	return []string{"mp4", "avi", "mov", "mkv", "flv", "wmv", "mp3", "wav", "m4a"}
}

func defaultLanguages() []string {
	return []string{"auto", "ko", "en", "ja", "zh", "es", "fr"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir: defaultUploadDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Intake: Intake{
			MaxUploadMB:       defaultMaxUploadMB,
			AllowedExtensions: defaultExtensions(),
			AllowedLanguages:  defaultLanguages(),
		},
		Transcriber: Transcriber{
			Binary:       defaultWhisperBinary,
			DefaultModel: defaultWhisperModel,
			BeamSize:     defaultBeamSize,
			BestOf:       defaultBestOf,
			Temperature:  defaultTemperature,
		},
		Diarization: Diarization{
			Binary: defaultDiarizeBinary,
		},
		Downloader: Downloader{
			Binary:        defaultDownloaderBinary,
			Format:        defaultDownloaderFormat,
			SocketTimeout: defaultDownloaderTimeout,
			Retries:       defaultDownloaderRetries,
		},
		Media: Media{
			FFmpegBinary: defaultFFmpegBinary,
			MP3Bitrate:   defaultMP3Bitrate,
		},
		Workflow: Workflow{
			Workers:           defaultWorkers,
			QueuePollInterval: defaultQueuePollInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
