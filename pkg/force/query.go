package force

import (
	"context"
	"errors"
	"net/url"
)

// Query runs a SOQL query and returns the first page of results.
func (c *Connection) Query(ctx context.Context, soql string) (*QueryResult, error) {
	var res QueryResult
	if err := c.getJSON(ctx, "query", url.Values{"q": {soql}}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// QueryMore fetches the page at a previous result's NextRecordsURL.
func (c *Connection) QueryMore(ctx context.Context, nextRecordsURL string) (*QueryResult, error) {
	if nextRecordsURL == "" {
		return nil, errors.New("force: no more records")
	}

	var res QueryResult
	if err := c.getJSON(ctx, nextRecordsURL, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Search runs a SOSL search.
func (c *Connection) Search(ctx context.Context, sosl string) (*SearchResult, error) {
	var res SearchResult
	if err := c.getJSON(ctx, "search", url.Values{"q": {sosl}}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Describe returns the metadata of objectClass, or the global describe when
// objectClass is empty.
func (c *Connection) Describe(ctx context.Context, objectClass string) (DescribeResult, error) {
	path := "sobjects"
	if objectClass != "" {
		path = sobjectPath(objectClass, "describe")
	}

	var res DescribeResult
	if err := c.getJSON(ctx, path, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// DescribeGlobal lists the sObject types available to the session.
func (c *Connection) DescribeGlobal(ctx context.Context) (*GlobalDescribe, error) {
	var res GlobalDescribe
	if err := c.getJSON(ctx, "sobjects", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
