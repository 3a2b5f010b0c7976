package domain

// User is a customer account; the console never modifies it.
type User struct {
	ID       string `mapstructure:"_id" json:"id"`
	AltID    string `mapstructure:"id" json:"-"`
	FullName string `mapstructure:"fullName" json:"fullName"`
	AltName  string `mapstructure:"name" json:"-"`
	Email    string `mapstructure:"email" json:"email"`
	Mobile   string `mapstructure:"mobile" json:"mobile"`
	Phone    string `mapstructure:"phone" json:"-"`
	Address  string `mapstructure:"address" json:"address,omitempty"`
}

func (u *User) Normalize() {
	if u.ID == "" {
		u.ID = u.AltID
	}
	if u.FullName == "" {
		u.FullName = u.AltName
	}
	if u.Mobile == "" {
		u.Mobile = u.Phone
	}
}

func (u User) Key() string {
	return u.ID
}

// UserRow flat CSV export row
type UserRow struct {
	ID       string `csv:"id"`
	FullName string `csv:"full_name"`
	Email    string `csv:"email"`
	Mobile   string `csv:"mobile"`
	Address  string `csv:"address"`
}

func (u User) Row() UserRow {
	return UserRow{ID: u.ID, FullName: u.FullName, Email: u.Email, Mobile: u.Mobile, Address: u.Address}
}
