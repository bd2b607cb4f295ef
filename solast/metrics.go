package solast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FilesScanned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soltype_files_scanned_total",
		Help: "AST files scanned, by result",
	}, []string{"result"})

	TypeStrings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soltype_type_strings_total",
		Help: "Type strings parsed, by result",
	}, []string{"result"})

	Decls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soltype_declarations_total",
		Help: "Variable declarations built from type name nodes, by result",
	}, []string{"result"})

	UnknownNodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soltype_unknown_type_nodes_total",
		Help: "Type name nodes of an unrecognized kind",
	}, []string{"node_type"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "soltype_scan_file_duration_seconds",
		Help:    "Time taken to scan one AST file",
		Buckets: prometheus.DefBuckets,
	})
)

func result(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}
