// Package process launches command pipelines as operating system processes.
//
// An Orchestrator wires the stages of one pipeline together with pipes and
// redirection files, waits for the final stage of a foreground pipeline and
// hands everything else to a Reaper, which collects exit statuses of
// processes the shell does not wait for so they never linger as zombies.
//
// The package targets unix systems.
package process
