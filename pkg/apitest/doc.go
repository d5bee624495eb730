// Package apitest provides an in-process fake of the stock-dashboard
// backend for integration-style tests. It speaks the real wire contract:
// form-urlencoded credential exchange, bearer-token authorization, the
// owner-or-admin permission rules, and every tolerated shape of the user
// list payload (selectable per server, so normalization can be exercised
// against all of them).
//
// The fake holds state in memory and issues opaque random tokens; nothing
// here is suitable for production use.
//
//	srv := apitest.NewServer(apitest.WithListShape(apitest.ShapeListOfUsers))
//	defer srv.Close()
//
//	adminID := srv.SeedUser(identity.User{Username: "root", Role: identity.RoleAdmin}, "secret1")
//	client, _ := apiclient.New(srv.URL())
package apitest
