// Package minio provides an imagestore.Store for MinIO and other
// S3-compatible object stores.
//
//	client, err := minio.New("localhost:9000", &minio.Options{...})
//	store := miniostore.NewStore(client, "captures", "raw/")
//
// Ranged GETs keep track loads cheap; streaming uploads back Create.
package minio
