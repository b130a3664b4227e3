// Package vana provides an object-metadata registry and access broker.
//
// Vana tracks logical objects and groups of objects, their ownership and
// access-control lists, and brokers time-limited access to the underlying
// bytes, which may live in one of several pluggable storage backends.
// Clients never talk to a storage backend directly: they ask the service to
// resolve an object id into a short-lived, backend-specific access URL.
//
// # Key Components
//
//   - Service: resolution/lifecycle engine composing the repos and signers
//   - ObjectRepo, GroupRepo: interfaces for metadata persistence (PostgreSQL, SQLite)
//   - Signer: per-backend URL signing strategy (canonical-string, SDK presign, in-memory)
//   - MessageCatalog: externally configured error text keyed by stable codes
//
// # Example Usage
//
//	service, err := vana.NewService(objects, groups, signers)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create an object; the backend location is generated from the new id.
//	obj, err := service.Create(ctx, "alice", vana.CreateObject{
//	    Name: "report.bin", OwnerID: "alice", Platform: "objectstore",
//	    Readers: []string{"alice"}, Writers: []string{"alice"},
//	})
//
//	// Resolve it into a five-minute GET URL.
//	res, err := service.ResolveTransfer(ctx, "alice", obj.ID, vana.ResolveRequest{
//	    ValidityPeriodSeconds: 300, HTTPMethod: vana.VerbGet,
//	})
//
// See the http package for the REST API and the database packages for the
// metadata backends.
package vana
