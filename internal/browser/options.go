package browser

import (
	"io"
	"time"

	"github.com/chromedp/chromedp"
)

type Options struct {
	ProfileDir      string
	ExecPath        string
	Headless        bool
	PageLoadTimeout time.Duration
	Locators        Locators
}

type launchFlag struct {
	name  string
	value any
}

// launchFlags is the fixed Chrome switch set: persistent profile, automation
// markers off, stability switches and browser-side logging silenced.
func launchFlags(o Options) []launchFlag {
	flags := []launchFlag{
		{"profile-directory", "Default"},

		{"disable-blink-features", "AutomationControlled"},
		{"enable-automation", false},
		{"disable-infobars", true},

		{"disable-gpu", true},
		{"no-sandbox", true},
		{"disable-dev-shm-usage", true},

		{"log-level", "3"},
		{"disable-logging", true},
		{"disable-crash-reporter", true},
		{"disable-breakpad", true},
		{"disable-component-update", true},
		{"disable-background-networking", true},
		{"disable-default-apps", true},
		{"disable-features", "TranslateUI"},
		{"no-first-run", true},
		{"no-service-autorun", true},
		{"metrics-recording-only", true},

		{"start-maximized", true},
	}
	if !o.Headless {
		flags = append(flags, launchFlag{"headless", false})
	}
	return flags
}

func allocatorOptions(o Options) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for _, f := range launchFlags(o) {
		opts = append(opts, chromedp.Flag(f.name, f.value))
	}
	opts = append(opts,
		chromedp.UserDataDir(o.ProfileDir),
		chromedp.CombinedOutput(io.Discard),
	)
	if detachSupported {
		opts = append(opts, chromedp.ModifyCmdFunc(detachCmd))
	}
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	return opts
}
