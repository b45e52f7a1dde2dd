// Package debugz serves the renderer's debug endpoints.
package debugz

import (
	"html/template"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Healthz always answers 200 OK.
type Healthz struct{}

func (h Healthz) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("200 OK"))
}

// Progress tracks a running render for display on /debug/progress.  It is
// safe for concurrent use.
type Progress struct {
	mu sync.Mutex

	scene   string
	rows    int
	cols    int
	cur     int
	total   int
	started time.Time

	now func() time.Time
}

func NewProgress(scene string, rows, cols int) *Progress {
	return &Progress{
		scene:   scene,
		rows:    rows,
		cols:    cols,
		started: time.Now(),
		now:     time.Now,
	}
}

// Update has the shape of scene.ProgressFunction.
func (p *Progress) Update(cur, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cur = cur
	p.total = total
}

type ProgressData struct {
	Scene   string
	Rows    int
	Cols    int
	Cur     int
	Total   int
	Percent int
	Elapsed time.Duration
}

func (p *Progress) Snapshot() ProgressData {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := ProgressData{
		Scene:   p.scene,
		Rows:    p.rows,
		Cols:    p.cols,
		Cur:     p.cur,
		Total:   p.total,
		Elapsed: p.now().Sub(p.started).Round(time.Second),
	}
	if p.total > 0 {
		d.Percent = 100 * p.cur / p.total
	}
	return d
}

const progressHTML = `<!DOCTYPE html>
<html>
<head><title>harpoon: {{.Scene}}</title></head>
<body>
<h1>{{.Scene}}</h1>
<p>{{.Cols}}x{{.Rows}}</p>
<p>{{.Cur}} / {{.Total}} samples ({{.Percent}}%)</p>
<p>elapsed {{.Elapsed}}</p>
</body>
</html>
`

var progressTemplate = template.Must(template.New("progress").Parse(progressHTML))

func (p *Progress) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := progressTemplate.Execute(w, p.Snapshot()); err != nil {
		glog.Errorf("Error while executing template: %v", err)
		return
	}
}

// NewServeMux wires up healthz, pprof and, if p is non-nil, the progress
// page.
func NewServeMux(p *Progress) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/healthz", Healthz{})
	mux.Handle("/readyz", Healthz{})
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	if p != nil {
		mux.Handle("/debug/progress", p)
	}
	return mux
}
