// Package main hosts the scenecraft CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the pipeline flows:
// aligning a script against ASR timestamps, matching numbered media folders,
// building project archives, injecting media into existing archives, and
// inspecting results. It centralizes configuration loading and logger setup
// so subcommands only translate flags into requests and render outcomes.
//
// Keep this package lean: new behavior belongs in internal packages first and
// is surfaced here through dedicated commands or flags.
package main
