package packets

// RESPONSES FOR /api/admin/*

type ClearCacheResponse struct {
	Cleared bool `json:"cleared"`
}

type RebuildResponse struct {
	Installed int `json:"installed"`
	Failed    int `json:"failed"`
}
