package sfclient

// Reserved option keys read by the dispatcher itself.
const (
	CredentialsOption = "credentials"
	FederationOption  = "federation"
)

// Options are the named inputs of an operation.
type Options map[string]any

// normalizeOptions accepts nil, Options or a plain map.
func normalizeOptions(opts any) (Options, error) {
	switch v := opts.(type) {
	case nil:
		return Options{}, nil
	case Options:
		if v == nil {
			return Options{}, nil
		}
		return v, nil
	case map[string]any:
		if v == nil {
			return Options{}, nil
		}
		return Options(v), nil
	default:
		return nil, &ValidationError{Field: optionsField, Reason: "must be an object"}
	}
}

// credentials extracts per-call credentials. A missing key yields nil.
func (o Options) credentials() (*Credentials, error) {
	switch v := o[CredentialsOption].(type) {
	case nil:
		return nil, nil
	case *Credentials:
		return v, nil
	case Credentials:
		return &v, nil
	case map[string]any:
		return credentialsFromMap(v)
	default:
		return nil, typeError(CredentialsOption, "an object")
	}
}

// claims extracts federation claims. A missing key yields nil, which tells
// the bearer flow to use ActAsUsername instead.
func (o Options) claims() (ClaimSet, error) {
	switch v := o[FederationOption].(type) {
	case nil:
		return nil, nil
	case ClaimSet:
		return v, nil
	case []Claim:
		return ClaimSet(v), nil
	case map[string]any:
		return ClaimsFromMap(v), nil
	default:
		return nil, typeError(FederationOption, "an object")
	}
}

// credentialsFromMap decodes credentials from a JSON-style object using the
// same key names as the constructor options.
func credentialsFromMap(m map[string]any) (*Credentials, error) {
	var (
		c   Credentials
		err error
	)

	strField := func(key string, dst *string) {
		if err != nil {
			return
		}
		switch v := m[key].(type) {
		case nil:
		case string:
			*dst = v
		default:
			err = typeError(CredentialsOption+"."+key, "a string")
		}
	}
	boolField := func(key string, dst *bool) {
		if err != nil {
			return
		}
		switch v := m[key].(type) {
		case nil:
		case bool:
			*dst = v
		default:
			err = typeError(CredentialsOption+"."+key, "a boolean")
		}
	}

	var privateKey string
	strField("username", &c.Username)
	strField("password", &c.Password)
	strField("credential", &c.SecurityToken)
	strField("securityToken", &c.SecurityToken)
	strField("clientId", &c.ClientID)
	strField("clientSecret", &c.ClientSecret)
	strField("privateKey", &privateKey)
	strField("actAsUsername", &c.ActAsUsername)
	strField("loginHost", &c.LoginHost)
	boolField("isSandbox", &c.IsSandbox)
	boolField("useBearerAssertion", &c.UseBearerAssertion)
	if err != nil {
		return nil, err
	}
	if privateKey != "" {
		c.PrivateKey = []byte(privateKey)
	}

	switch v := m["oauth2"].(type) {
	case nil:
	case map[string]any:
		oauth := &OAuth2Client{}
		for key, dst := range map[string]*string{
			"clientId":     &oauth.ClientID,
			"clientSecret": &oauth.ClientSecret,
			"redirectUri":  &oauth.RedirectURI,
		} {
			if raw, ok := v[key]; ok && raw != nil {
				s, ok := raw.(string)
				if !ok {
					return nil, typeError(CredentialsOption+".oauth2."+key, "a string")
				}
				*dst = s
			}
		}
		c.OAuth2 = oauth
	default:
		return nil, typeError(CredentialsOption+".oauth2", "an object")
	}

	return &c, nil
}
