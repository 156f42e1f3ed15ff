// Package services implements the core retrieval pipeline behind the
// driving ports: rule-id resolution, query expansion, dual-source
// retrieval with rule-aware boosting, context assembly, index building
// and question answering.
//
// Services depend only on domain types and driven ports; adapters are
// injected at construction.
package services
