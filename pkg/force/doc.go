/*
Package force is a small client for the Salesforce OAuth token endpoint and
the REST object API.

# Connector vs Connection

The package is organized around two types:

  - Connector: knows a login host and an OAuth2 connected app, and turns
    credentials into a Connection
  - Connection: an authenticated session handle bound to an instance URL
    that issues REST calls

Authenticate with the OAuth2 username-password flow:

	connector := &force.Connector{
		LoginURL:     force.HostURL("login.salesforce.com"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
	conn, err := connector.Login(ctx, username, password+securityToken)

Or exchange a signed JWT bearer assertion:

	conn, err := connector.ExchangeAssertion(ctx, assertion)

Then use the connection:

	res, err := conn.Query(ctx, "SELECT Id, Name FROM Account")
	saved, err := conn.Create(ctx, "Account", force.Record{"Name": "Acme"})

# Errors

Token endpoint failures come back as *OAuth2Error. REST failures come back
as *APIError carrying the Salesforce error codes; IsInvalidSession reports
whether the session behind a Connection was revoked or timed out.

# Thread Safety

A Connection is immutable after construction and safe for concurrent use.
*/
package force
