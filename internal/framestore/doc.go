// Package framestore owns the directory that holds captured frames between
// capture and encoding.
//
// In GIF mode a uniquely named work directory (webgif-<run id>-*) is
// allocated under the configured work root; frames are named
// T<unix nanos>-<seq>.png so lexical order matches capture order. In PNG mode
// the user's output directory is used directly and frames are numbered
// 1.png..N.png. The store tracks what it wrote so a failed run can discard
// partial output.
package framestore
