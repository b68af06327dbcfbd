// Package detection coordinates the toolchain detectors and the result cache.
//
// The Service decides between serving cached results and running detectors.
// Both detectors run concurrently; identical concurrent calls are collapsed
// so each tool is probed at most once per logical request.
//
//	svc := detection.NewService(cacheManager, []toolchain.Detector{gcc, ocd}, logger)
//	results, err := svc.DetectToolchains(ctx, detection.Options{})
package detection
