package classifier

import (
	"testing"

	"form-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func testValues() entity.ValueSource {
	return entity.NewValueSource(entity.BuiltinDefaults(), entity.Credentials{
		Email:    "a@b.com",
		Password: "p1",
	}, nil)
}

func TestClassify_SkipsHiddenAndFile(t *testing.T) {
	values := entity.ValueSourceFromMap(map[string]string{
		"csrf":   "token",
		"avatar": "x.png",
		"email":  "a@b.com",
	})

	for _, typ := range []string{"hidden", "file", "HIDDEN", " File "} {
		for _, name := range []string{"csrf", "avatar", "email", ""} {
			got := Classify(entity.FieldDescriptor{Tag: "input", Type: typ, Name: name}, values)
			assert.True(t, got.IsNone(), "type=%q name=%q", typ, name)
		}
	}
}

func TestClassify_ExactKeyBeatsKeywords(t *testing.T) {
	values := entity.ValueSourceFromMap(map[string]string{
		"email":  "exact@b.com",
		"signup": "from-placeholder",
	})

	got := Classify(entity.FieldDescriptor{Type: "email", Name: "email", Placeholder: "Your e-mail"}, values)
	assert.Equal(t, "exact@b.com", got.Value)
	assert.Equal(t, SourceExactKey, got.Source)

	got = Classify(entity.FieldDescriptor{Type: "text", Name: "user_mail", Placeholder: "signup"}, values)
	assert.Equal(t, "from-placeholder", got.Value)
}

func TestClassify_ExactKeyOrder(t *testing.T) {
	values := entity.ValueSourceFromMap(map[string]string{
		"handle":    "by-name",
		"Your name": "by-placeholder",
		"Nickname":  "by-label",
	})

	got := Classify(entity.FieldDescriptor{Name: "handle", Placeholder: "Your name", LabelText: "Nickname"}, values)
	assert.Equal(t, "by-name", got.Value)

	got = Classify(entity.FieldDescriptor{Name: "x", Placeholder: "Your name", LabelText: "Nickname"}, values)
	assert.Equal(t, "by-placeholder", got.Value)

	got = Classify(entity.FieldDescriptor{Name: "x", LabelText: "Nickname"}, values)
	assert.Equal(t, "by-label", got.Value)
}

func TestClassify_CallerDataOverridesDefaults(t *testing.T) {
	values := entity.NewValueSource(entity.BuiltinDefaults(), entity.Credentials{Email: "a@b.com", Password: "p1"},
		map[string]string{entity.KeyFirstName: "Ada"})

	got := Classify(entity.FieldDescriptor{Type: "text", Name: "given_name"}, values)
	assert.Equal(t, "Ada", got.Value)
}

func TestClassify_Password(t *testing.T) {
	values := entity.ValueSourceFromMap(map[string]string{
		entity.KeyPassword:        "p1",
		entity.KeyConfirmPassword: "p1-confirm",
	})

	tests := []struct {
		name  string
		field entity.FieldDescriptor
		key   string
	}{
		{"typed", entity.FieldDescriptor{Type: "password", Name: "pwd"}, entity.KeyPassword},
		{"confirm", entity.FieldDescriptor{Type: "password", Name: "password_confirm"}, entity.KeyConfirmPassword},
		{"retype label", entity.FieldDescriptor{Type: "password", LabelText: "Retype password"}, entity.KeyConfirmPassword},
		{"repeat placeholder", entity.FieldDescriptor{Type: "password", Placeholder: "Repeat it"}, entity.KeyConfirmPassword},
		{"keyword on text", entity.FieldDescriptor{Type: "text", Name: "passcode"}, entity.KeyPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.field, values)
			assert.Equal(t, tt.key, got.Key)
		})
	}
}

func TestClassify_Categories(t *testing.T) {
	values := testValues()

	tests := []struct {
		name  string
		field entity.FieldDescriptor
		rule  string
		value string
	}{
		{"email type", entity.FieldDescriptor{Type: "email", Name: "login"}, "email", "a@b.com"},
		{"email keyword", entity.FieldDescriptor{Type: "text", Placeholder: "E-mail address"}, "email", "a@b.com"},
		{"first name", entity.FieldDescriptor{Type: "text", Name: "firstname"}, "first_name", "John"},
		{"last name", entity.FieldDescriptor{Type: "text", AriaLabel: "Surname"}, "last_name", "Doe"},
		{"full name", entity.FieldDescriptor{Type: "text", LabelText: "Full name"}, "full_name", "John Doe"},
		{"generic name", entity.FieldDescriptor{Type: "text", Name: "name"}, "full_name", "John Doe"},
		{"phone type", entity.FieldDescriptor{Type: "tel", Name: "contact"}, "phone", "5551234567"},
		{"phone keyword", entity.FieldDescriptor{Type: "text", Name: "mobile"}, "phone", "5551234567"},
		{"username", entity.FieldDescriptor{Type: "text", LabelText: "Username"}, "username", "a"},
		{"login id", entity.FieldDescriptor{Type: "text", LabelText: "Login ID"}, "username", "a"},
		{"company name", entity.FieldDescriptor{Type: "text", Placeholder: "Company name"}, "company", "Acme Inc"},
		{"address", entity.FieldDescriptor{Type: "text", Name: "street"}, "address", "123 Main St"},
		{"city", entity.FieldDescriptor{Type: "text", Name: "town"}, "city", "Metropolis"},
		{"zip", entity.FieldDescriptor{Type: "text", Name: "postcode"}, "zip", "12345"},
		{"zip on number", entity.FieldDescriptor{Type: "number", Name: "postal_code"}, "zip", "12345"},
		{"generic text", entity.FieldDescriptor{Type: "text", Name: "q"}, "generic_text", GenericTextValue},
		{"generic search", entity.FieldDescriptor{Type: "search"}, "generic_text", GenericTextValue},
		{"missing type is text", entity.FieldDescriptor{Tag: "textarea", Name: "bio"}, "generic_text", GenericTextValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.field, values)
			assert.False(t, got.IsNone())
			assert.Equal(t, tt.rule, got.Rule)
			assert.Equal(t, tt.value, got.Value)
		})
	}
}

func TestClassify_UnclassifiedNonText(t *testing.T) {
	values := testValues()

	for _, f := range []entity.FieldDescriptor{
		{Type: "checkbox", Name: "remember_email"},
		{Type: "radio", Name: "plan"},
		{Type: "date", Name: "dob"},
		{Type: "number", Name: "age"},
		{Type: "submit", Name: "go"},
	} {
		got := Classify(f, values)
		assert.True(t, got.IsNone(), "field %+v", f)
	}
}

func TestClassify_MissingKeyYieldsNone(t *testing.T) {
	values := entity.ValueSourceFromMap(map[string]string{entity.KeyEmail: "a@b.com"})

	got := Classify(entity.FieldDescriptor{Type: "tel", Name: "phone"}, values)
	assert.True(t, got.IsNone())
}

func TestClassify_DoesNotMutateValues(t *testing.T) {
	values := testValues()
	before := values.Keys()

	_ = Classify(entity.FieldDescriptor{Type: "text", Name: "brand_new_field"}, values)
	_ = Classify(entity.FieldDescriptor{Type: "password"}, values)

	assert.Equal(t, before, values.Keys())
}

func TestRules_Order(t *testing.T) {
	var names []string
	for _, r := range Rules() {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{
		"email", "password", "first_name", "last_name", "full_name", "phone",
		"username", "company", "address", "city", "zip", "generic_text",
	}, names)
}

func TestRules_IndividualPredicates(t *testing.T) {
	byName := map[string]Rule{}
	for _, r := range Rules() {
		byName[r.Name] = r
	}

	assert.True(t, byName["email"].Match(Input{Type: "email"}))
	assert.False(t, byName["email"].Match(Input{Type: "checkbox", Hint: "email me"}))
	assert.True(t, byName["password"].Match(Input{Type: "password"}))
	assert.True(t, byName["full_name"].Match(Input{Type: "text", Hint: "name"}))
	assert.False(t, byName["full_name"].Match(Input{Type: "text", Hint: "username"}))
	assert.True(t, byName["phone"].Match(Input{Type: "tel"}))
	assert.False(t, byName["generic_text"].Match(Input{Type: "number"}))
}
