package types

// JSONMap is a free-form jsonb payload persisted with gorm's json serializer.
type JSONMap map[string]any
