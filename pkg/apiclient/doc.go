// Package apiclient talks to the admin panel backend over JSON/HTTP.
//
// Every response is wrapped in a {code, data, msg} envelope; codes 0 and 200
// mean success and data is decoded into the caller's value. Requests carry
// the namespace's bearer token and an Accept-Language header.
//
// # Unauthorized responses
//
// A 401 is handed to the bound AuthHandler. With refresh enabled the client
// first exchanges the refresh token once (concurrent refreshes collapse into
// one) and retries the request with the new token. If that is not possible
// the handler's Reauthenticate runs and the call fails with ErrUnauthorized.
// Logout and refresh requests are sent with Bare and never trigger this.
//
//	client, err := apiclient.New(cfg.BaseURL,
//		apiclient.WithTokens(adminAccess),
//		apiclient.WithRefresh(cfg.EnableRefreshToken),
//	)
//	api := apiclient.NewAuthAPI(client, apiclient.PrefixAdmin)
//	svc := auth.NewService(api, adminAccess, identities)
//	client.Bind(svc)
//
// NewAuthAPI, NewMenuAPI and NewInstallAPI implement the collaborator
// interfaces of the auth and guard packages.
package apiclient
