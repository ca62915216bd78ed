package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/TFMV/kolgraph/physics"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("network").Parse(htmlTemplate))
}

// HTMLRenderer outputs a self-contained page around the SVG scene
type HTMLRenderer struct{}

// Name returns the name of the renderer
func (r *HTMLRenderer) Name() string {
	return "HTML Renderer"
}

// Description returns a description of the renderer
func (r *HTMLRenderer) Description() string {
	return "Renders a standalone HTML page with hover tooltips, live when bound to a session"
}

// ContentType returns the MIME type
func (r *HTMLRenderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// templateData holds data for the HTML template.
type templateData struct {
	Title       string
	Background  string
	Text        string
	SVG         template.HTML
	FrameJSON   template.JS
	SessionURL  string
	PollMillis  int
	LabelOffset float64
}

// Render creates the HTML page
func (r *HTMLRenderer) Render(frame *physics.Frame, opts *OutputOptions) ([]byte, error) {
	opts = options(opts, "html")
	palette := PaletteFor(opts.ColorScheme)

	var svg bytes.Buffer
	writeSVG(&svg, frame, opts, palette)

	frameJSON, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}

	poll := opts.PollMillis
	if poll <= 0 {
		poll = 100
	}

	data := templateData{
		Title:       opts.Title,
		Background:  palette.Background,
		Text:        palette.Text,
		SVG:         template.HTML(svg.String()),
		FrameJSON:   template.JS(frameJSON),
		SessionURL:  opts.SessionURL,
		PollMillis:  poll,
		LabelOffset: opts.LabelOffset,
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  body { margin: 0; padding: 16px; background: {{.Background}}; color: {{.Text}}; font-family: sans-serif; }
  #stage { position: relative; display: inline-block; }
  #tooltip { position: absolute; display: none; pointer-events: none; background: rgba(255,255,255,0.95);
             border: 1px solid #ccc; border-radius: 4px; padding: 6px 8px; font-size: 12px; color: #333;
             box-shadow: 0 2px 6px rgba(0,0,0,0.15); white-space: nowrap; }
  #tooltip .kol { color: #B8860B; font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div id="stage">
{{.SVG}}
<div id="tooltip"></div>
</div>
<script>
(function() {
  let frame = {{.FrameJSON}};
  const session = {{.SessionURL}};
  const labelOffset = {{.LabelOffset}};
  const svg = document.getElementById('network');
  const tip = document.getElementById('tooltip');
  let dragging = null;

  function point(evt) {
    const rect = svg.getBoundingClientRect();
    return {
      x: (evt.clientX - rect.left) * frame.width / rect.width,
      y: (evt.clientY - rect.top) * frame.height / rect.height
    };
  }

  // First node in stored order whose circle contains the point
  function hit(p) {
    for (const n of frame.nodes) {
      const dx = p.x - n.x, dy = p.y - n.y;
      if (Math.sqrt(dx * dx + dy * dy) <= n.radius) return n;
    }
    return null;
  }

  function draw() {
    const slot = {};
    frame.nodes.forEach((n, i) => {
      slot[n.id] = i;
      const c = svg.querySelector('[data-node="' + i + '"]');
      if (c) { c.setAttribute('cx', n.x); c.setAttribute('cy', n.y); }
      const l = svg.querySelector('[data-label="' + i + '"]');
      if (l) { l.setAttribute('x', n.x); l.setAttribute('y', n.y + labelOffset); }
    });
    frame.edges.forEach((e, i) => {
      const line = svg.querySelector('[data-edge="' + i + '"]');
      const a = frame.nodes[slot[e.source]], b = frame.nodes[slot[e.target]];
      if (!line || !a || !b) return;
      line.setAttribute('x1', a.x); line.setAttribute('y1', a.y);
      line.setAttribute('x2', b.x); line.setAttribute('y2', b.y);
    });
  }

  svg.addEventListener('mousemove', evt => {
    const p = point(evt);
    if (dragging && session) {
      fetch(session + '/pins/' + encodeURIComponent(dragging), {
        method: 'PUT', headers: {'Content-Type': 'application/json'}, body: JSON.stringify(p)
      });
    }
    const n = hit(p);
    if (!n) { tip.style.display = 'none'; return; }
    tip.innerHTML = '';
    [n.name, n.category, 'Influence: ' + n.influence_score].forEach(t => {
      const d = document.createElement('div'); d.textContent = t; tip.appendChild(d);
    });
    if (n.kol) {
      const d = document.createElement('div'); d.className = 'kol'; d.textContent = 'Key Opinion Leader'; tip.appendChild(d);
    }
    tip.style.left = (evt.offsetX + 12) + 'px';
    tip.style.top = (evt.offsetY + 12) + 'px';
    tip.style.display = 'block';
  });

  svg.addEventListener('mouseleave', () => { tip.style.display = 'none'; });

  if (session) {
    svg.addEventListener('mousedown', evt => {
      const n = hit(point(evt));
      if (n) dragging = n.id;
    });
    window.addEventListener('mouseup', () => {
      if (!dragging) return;
      fetch(session + '/pins/' + encodeURIComponent(dragging), { method: 'DELETE' });
      dragging = null;
    });
    const poll = setInterval(() => {
      fetch(session + '/frame').then(r => {
        if (r.status === 404) { clearInterval(poll); return null; }
        return r.ok ? r.json() : null;
      }).then(f => {
        if (f) { frame = f; draw(); }
      }).catch(() => {});
    }, {{.PollMillis}});
    window.addEventListener('pagehide', () => {
      clearInterval(poll);
      fetch(session, { method: 'DELETE', keepalive: true });
    });
  }
})();
</script>
</body>
</html>
`
