package log

const (
	FieldService = "service"

	// Cache
	FieldCacheKey      = "cache_key"
	FieldCacheIdentity = "cache_identity"
	FieldCacheResult   = "cache_result"

	// Search index
	FieldCollection = "collection"
	FieldDocumentID = "document_id"
	FieldLatency    = "latency_ms"
)
