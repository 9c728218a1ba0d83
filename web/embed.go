package web

import "embed"

// Templates holds the layout, partial and page templates parsed by the
// view engine at startup.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds the assets served under /static.
//
//go:embed static/**/*
var Static embed.FS
