// Package urls provides centralized constants for the download and
// documentation links shown in recommendations and command output.
//
// Usage:
//
//	import "github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/urls"
//
//	fmt.Printf("Install OpenOCD from %s\n", urls.OpenOCDDownload)
package urls
