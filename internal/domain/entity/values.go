package entity

import (
	"sort"
	"strings"
)

const (
	KeyEmail           = "email"
	KeyPassword        = "password"
	KeyConfirmPassword = "confirmPassword"
	KeyFirstName       = "firstName"
	KeyLastName        = "lastName"
	KeyFullName        = "fullName"
	KeyPhone           = "phone"
	KeyUsername        = "username"
	KeyCompany         = "company"
	KeyAddress         = "address"
	KeyCity            = "city"
	KeyZip             = "zip"
)

// Defaults holds the built-in personal data used when the caller does not
// supply a value. Environment overrides are folded in by the env service.
type Defaults struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	FullName  string
	Phone     string
	Username  string
	Company   string
	Address   string
	City      string
	Zip       string
}

func BuiltinDefaults() Defaults {
	return Defaults{
		Email:     "test@example.com",
		Password:  "testpassword123",
		FirstName: "John",
		LastName:  "Doe",
		FullName:  "John Doe",
		Phone:     "5551234567",
		Company:   "Acme Inc",
		Address:   "123 Main St",
		City:      "Metropolis",
		Zip:       "12345",
	}
}

type Credentials struct {
	Email    string
	Password string
}

// WithDefaults substitutes default values for blank fields.
func (c Credentials) WithDefaults(d Defaults) Credentials {
	if strings.TrimSpace(c.Email) == "" {
		c.Email = d.Email
	}
	if c.Password == "" {
		c.Password = d.Password
	}
	return c
}

// ValueSource is an immutable key to value mapping built once per attempt.
type ValueSource struct {
	values map[string]string
}

// NewValueSource merges defaults, credentials and caller data. Caller data
// wins over everything else.
func NewValueSource(d Defaults, creds Credentials, extra map[string]string) ValueSource {
	username := d.Username
	if username == "" {
		username, _, _ = strings.Cut(creds.Email, "@")
	}

	values := map[string]string{
		KeyFirstName:       d.FirstName,
		KeyLastName:        d.LastName,
		KeyFullName:        d.FullName,
		KeyPhone:           d.Phone,
		KeyUsername:        username,
		KeyEmail:           creds.Email,
		KeyPassword:        creds.Password,
		KeyConfirmPassword: creds.Password,
		KeyCompany:         d.Company,
		KeyAddress:         d.Address,
		KeyCity:            d.City,
		KeyZip:             d.Zip,
	}
	for k, v := range extra {
		if k == "" {
			continue
		}
		values[k] = v
	}

	return ValueSource{values: values}
}

// ValueSourceFromMap is mostly useful in tests.
func ValueSourceFromMap(m map[string]string) ValueSource {
	values := make(map[string]string, len(m))
	for k, v := range m {
		values[k] = v
	}
	return ValueSource{values: values}
}

func (v ValueSource) Lookup(key string) (string, bool) {
	val, ok := v.values[key]
	return val, ok
}

func (v ValueSource) Keys() []string {
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (v ValueSource) Len() int {
	return len(v.values)
}
