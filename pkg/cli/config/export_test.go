package config

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, geminiProject, openaiAPIKey string) *LLM {
	return &LLM{
		provider:       provider,
		geminiProject:  geminiProject,
		geminiLocation: "us-central1",
		openaiAPIKey:   openaiAPIKey,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, path string) *Repository {
	return &Repository{
		backend: backend,
		path:    path,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewIndexForTest creates an Index config for testing purposes
func NewIndexForTest(dir string) *Index {
	return &Index{dir: dir}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(bucket, prefix, endpoint string) *Storage {
	return &Storage{
		bucket:   bucket,
		prefix:   prefix,
		endpoint: endpoint,
	}
}

// NewAppConfigForTest creates an AppConfig bound to path for testing purposes
func NewAppConfigForTest(path string) *AppConfig {
	return &AppConfig{path: path}
}
