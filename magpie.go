// Package magpie is the root of the Magpie import graph visualizer.
package magpie

// Version is the current Magpie release.
const Version = "0.1.0"
