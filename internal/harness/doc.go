// Package harness grades generated code artifacts against external quality
// checks.
//
// # Layout
//
// Artifacts live in a three-level tree, one leaf directory per iteration:
//
//	code/<challenge>/<variant>/<iteration>/<model>.py
//
// Check scripts live per challenge:
//
//	tests/<challenge>/<check>.py
//
// # Runs
//
// A run is one (leaf, model, check) triple. For every leaf the Runner walks
// the models of the Matrix in order; a model without an artifact in that
// leaf is skipped and not counted. For a present artifact every check is
// executed by the Harness:
//
//	NOT_STARTED -> PRECONDITION_CHECKED -> STAGED -> EXECUTED -> CLEANED_UP -> COUNTED
//	                                    \-> PRECONDITION_FAILED ----------------^
//
// The check is copied into the leaf under a fixed name, started with the
// leaf as working directory and the model name as sole argument, and its
// combined output is written to <results>/<iteration>_<check>_<model>.txt.
// Exit status 0 is a pass; anything else is a failure. The staged copy is
// removed on every path out of Execute.
//
// # Concurrency
//
// By default runs execute one at a time, and the codegrade command never
// changes that. WithWorkers is a library-level option that enables a
// bounded pool over leaves; each leaf (and every leaf sharing its result
// file prefix) is owned by one worker. A worker hands over a leaf's events
// as one block when the leaf is done, and a single aggregator applies them,
// so observers always see one leaf at a time.
package harness
