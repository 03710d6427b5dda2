package repository

//go:generate mockgen -destination=mock/repository_mock.go -package=mock ytt/backend/internal/repository EntryRepository,ArtifactRepository,SettingsRepository
