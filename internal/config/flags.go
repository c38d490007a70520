package config

import (
	"log/slog"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Flags holds feature toggles that can change while the server runs.
type Flags struct {
	quotePlaceholder         atomic.Bool
	allowResubmitAfterReject atomic.Bool
}

func NewFlags(f FeaturesConfig) *Flags {
	flags := &Flags{}
	flags.Apply(f)
	return flags
}

// Apply replaces every toggle with the values in f.
func (f *Flags) Apply(fc FeaturesConfig) {
	f.quotePlaceholder.Store(fc.QuotePlaceholder)
	f.allowResubmitAfterReject.Store(fc.AllowResubmitAfterReject)
}

func (f *Flags) QuotePlaceholder() bool {
	return f.quotePlaceholder.Load()
}

func (f *Flags) AllowResubmitAfterReject() bool {
	return f.allowResubmitAfterReject.Load()
}

// Watch re-reads the features section whenever the config file changes.
// Only feature flags are hot-reloaded; everything else needs a restart.
func Watch(v *viper.Viper, flags *Flags, log *slog.Logger) {
	if v == nil || flags == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		var fc FeaturesConfig
		if err := v.UnmarshalKey("features", &fc); err != nil {
			log.Error("reload feature flags", slog.String("file", e.Name), slog.Any("error", err))
			return
		}

		flags.Apply(fc)
		log.Info("feature flags reloaded",
			slog.Bool("quote_placeholder", fc.QuotePlaceholder),
			slog.Bool("allow_resubmit_after_reject", fc.AllowResubmitAfterReject),
		)
	})
	v.WatchConfig()
}
