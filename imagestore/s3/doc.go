// Package s3 provides an Amazon S3 implementation of imagestore.Store.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(s3sdk.NewFromConfig(cfg), "my-bucket", "captures/")
//
//	dec, err := fluxgo.OpenStore(ctx, store, "disk1.scp")
//
// # Features
//
//   - Ranged GETs so track records load without fetching whole images
//   - Streaming uploads via the transfer manager
//   - Automatic pagination for listing
//   - Configurable prefix for shared buckets
package s3
