// Package web embeds the dashboard templates and browser glue.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html static/*.js
var content embed.FS

// Templates returns the html/template sources, rooted at templates/.
func Templates() fs.FS {
	return mustSub("templates")
}

// Static returns the files served under /static/, rooted at static/.
func Static() fs.FS {
	return mustSub("static")
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(content, dir)
	if err != nil {
		// dir is a literal embedded above
		panic(err)
	}
	return sub
}
