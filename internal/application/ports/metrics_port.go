package ports

// Recorder es el puerto de salida para métricas de autorización y mutaciones.
// El adaptador concreto (Prometheus) vive en infrastructure; los use cases
// solo conocen este contrato.
type Recorder interface {
	// Decision registra el resultado de una regla ("informe.ver", "permiso").
	Decision(rule string, allowed bool)
	// Mutation registra una escritura y su clasificación de error (domain.Status).
	Mutation(op string, status string)
}

// NopRecorder descarta todas las métricas.
type NopRecorder struct{}

func (NopRecorder) Decision(string, bool)   {}
func (NopRecorder) Mutation(string, string) {}
