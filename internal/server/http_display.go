package server

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

var endpointTable = [][3]string{
	{"GET", "/health", "liveness and engine readiness"},
	{"GET", "/stats", "server and rate limiter statistics"},
	{"POST", "/analyze", "full résumé analysis"},
	{"POST", "/scores", "semantic, keyword and final ATS scores"},
	{"POST", "/skills", "skill gap report"},
	{"POST", "/readiness", "recombine dimension scores under new weights"},
	{"POST", "/report", "analysis rendered as PDF"},
}

func (s *Server) displayServerInfo() {
	s.writeServerInfo(os.Stdout)
}

// writeServerInfo prints the endpoint table followed by the protective
// settings, flagging any that are switched off.
func (s *Server) writeServerInfo(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Endpoints:")
	for _, e := range endpointTable {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", e[0], e[1], e[2])
	}
	_ = tw.Flush()

	if n := len(*s.apiKeys.Load()); n > 0 {
		fmt.Fprintf(w, "Auth: %d API key(s), send X-API-Key on POST endpoints\n", n)
	} else {
		fmt.Fprintln(w, "Auth: off, POST endpoints are public")
	}

	if s.MaxRequestSize > 0 {
		fmt.Fprintf(w, "Max request body: %.1f MB\n", float64(s.MaxRequestSize)/(1<<20))
	} else {
		fmt.Fprintln(w, "Max request body: unlimited")
	}

	if rl := s.RateLimit; rl != nil && rl.Enabled {
		fmt.Fprintf(w, "Rate limit: %d req/min, burst %d, keyed by %s\n",
			rl.RequestsPerMin, rl.BurstCapacity, rateLimitScope(rl.ByAPIKey, rl.ByIP))
	} else {
		fmt.Fprintln(w, "Rate limit: off")
	}

	if s.vocabWatcher != nil {
		fmt.Fprintf(w, "Vocabulary reload: watching %s\n", s.vocabWatcher.File())
	}
	if s.keyWatcher != nil {
		fmt.Fprintln(w, "API key rotation: polling Vault")
	}
}

func rateLimitScope(byKey, byIP bool) string {
	switch {
	case byKey && byIP:
		return "API key, then IP"
	case byKey:
		return "API key (requests without one pass)"
	case byIP:
		return "IP"
	default:
		return "nothing (no requests are limited)"
	}
}
