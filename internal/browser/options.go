package browser

import "github.com/chromedp/chromedp"

// launchStrategies returns the ordered option sets tried during launch.
// The first set mirrors the flags the production containers need
// (sandboxing off, GPU off, mixed content allowed); the fallback drops the
// insecure-content flags for hosts where they trip Chrome's policy checks.
// Strategies are data so new ones can be appended without touching the
// launch loop.
func launchStrategies(chromePath string) [][]chromedp.ExecAllocatorOption {
	common := []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 1696),
	}
	if chromePath != "" {
		common = append(common, chromedp.ExecPath(chromePath))
	}

	primary := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	primary = append(primary, common...)
	primary = append(primary,
		chromedp.Flag("allow-running-insecure-content", true),
		chromedp.Flag("ignore-certificate-errors", true),
	)

	fallback := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	fallback = append(fallback, common...)

	return [][]chromedp.ExecAllocatorOption{primary, fallback}
}
