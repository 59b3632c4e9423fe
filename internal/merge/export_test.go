package merge

// Exported hooks so the _test package can exercise internals.
var Join = join
