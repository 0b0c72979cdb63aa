/*
Package sfclient authenticates against Salesforce, caches the resulting
sessions, and dispatches validated object operations over them.

# Authentication

A Client picks one of three flows per call:

  - JWT bearer assertion, when Credentials.UseBearerAssertion is set. A
    fresh RS256 assertion is signed and exchanged on every call; these
    sessions are never cached.
  - OAuth2 username-password flow against an explicit connected app, when
    Credentials.OAuth2 is set.
  - Username-password login with the client's configured connected app.

The last two share a session cache keyed by username. A session is reused
while it is younger than Config.Timeout and the presented password matches
the one it was created with; otherwise the client logs in again. Expiry is
absolute: reading a session does not extend its life.

# Operations

Every operation takes an Options map. The dispatcher checks the fields the
operation requires, resolves a session, and calls the REST API:

	client, err := sfclient.New(sfclient.Config{
		Username:     "integration@example.com",
		Password:     "secret",
		Credential:   "securityToken",
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := client.QueryObjects(ctx, sfclient.Options{"query": "SELECT Id FROM Account"})

Options may also carry per-call "credentials" (Credentials or a JSON-style
map) and "federation" claims, from which the bearer flow reads the user to
act as.

Missing required fields are reported as *ValidationError before any network
call. Remote failures are returned unchanged.
*/
package sfclient
