package gateway

import (
	"bytes"
	_ "embed"
	"net/http"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/wenhsiu/aiot-in-go/pkg/log"
)

//go:embed api.md
var apiDocs []byte

var (
	docsOnce sync.Once
	docsHTML []byte
)

const docsPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>aiot API</title>
<style>
body { font-family: sans-serif; max-width: 56em; margin: 2em auto; padding: 0 1em; }
code, pre { background: #f4f4f4; padding: 2px 4px; }
pre { padding: 1em; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
</style>
</head>
<body>
`

// renderDocs converts the embedded API markdown to HTML once
func renderDocs() []byte {
	docsOnce.Do(func() {
		md := goldmark.New(goldmark.WithExtensions(extension.Table))

		var buf bytes.Buffer
		buf.WriteString(docsPage)
		if err := md.Convert(apiDocs, &buf); err != nil {
			logger := log.WithComponent("gateway")
			logger.Error().Err(err).Msg("failed to render API docs")
			buf.Reset()
			buf.WriteString(docsPage)
			buf.WriteString("<pre>")
			buf.Write(apiDocs)
			buf.WriteString("</pre>")
		}
		buf.WriteString("</body>\n</html>\n")
		docsHTML = buf.Bytes()
	})
	return docsHTML
}

func handleDocs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(renderDocs())
	}
}
