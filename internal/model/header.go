package model

// Header is the singleton file-level metadata row, including the submitter.
type Header struct {
	SourceSystemID    string `json:"source_system_id,omitempty"`
	SourceSystemName  string `json:"source_system_name,omitempty"`
	SourceVersion     string `json:"source_version,omitempty"`
	SourceCorporation string `json:"source_corporation,omitempty"`
	Destination       string `json:"destination,omitempty"`
	FileName          string `json:"file_name,omitempty"`
	CreationDate      string `json:"creation_date,omitempty"`
	CreationTime      string `json:"creation_time,omitempty"`
	GedcomVersion     string `json:"gedcom_version,omitempty"`
	GedcomForm        string `json:"gedcom_form,omitempty"`
	Charset           string `json:"charset,omitempty"`
	Language          string `json:"language,omitempty"`
	Copyright         string `json:"copyright,omitempty"`
	Note              string `json:"note,omitempty"`

	SubmitterID      string `json:"submitter_id,omitempty"`
	SubmitterName    string `json:"submitter_name,omitempty"`
	SubmitterAddress string `json:"submitter_address,omitempty"`
	SubmitterCity    string `json:"submitter_city,omitempty"`
	SubmitterState   string `json:"submitter_state,omitempty"`
	SubmitterPostal  string `json:"submitter_postal,omitempty"`
	SubmitterCountry string `json:"submitter_country,omitempty"`
	SubmitterPhone   string `json:"submitter_phone,omitempty"`
	SubmitterEmail   string `json:"submitter_email,omitempty"`
	SubmitterFax     string `json:"submitter_fax,omitempty"`
	SubmitterWWW     string `json:"submitter_www,omitempty"`

	ImportedAt   string `json:"imported_at,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// Submitter is the submitter subset of the header.
type Submitter struct {
	ID      string `json:"submitter_id,omitempty"`
	Name    string `json:"submitter_name,omitempty"`
	Address string `json:"submitter_address,omitempty"`
	City    string `json:"submitter_city,omitempty"`
	State   string `json:"submitter_state,omitempty"`
	Postal  string `json:"submitter_postal,omitempty"`
	Country string `json:"submitter_country,omitempty"`
	Phone   string `json:"submitter_phone,omitempty"`
	Email   string `json:"submitter_email,omitempty"`
	Fax     string `json:"submitter_fax,omitempty"`
	WWW     string `json:"submitter_www,omitempty"`
}

// Submitter returns the submitter fields of the header.
func (h *Header) Submitter() Submitter {
	return Submitter{
		ID:      h.SubmitterID,
		Name:    h.SubmitterName,
		Address: h.SubmitterAddress,
		City:    h.SubmitterCity,
		State:   h.SubmitterState,
		Postal:  h.SubmitterPostal,
		Country: h.SubmitterCountry,
		Phone:   h.SubmitterPhone,
		Email:   h.SubmitterEmail,
		Fax:     h.SubmitterFax,
		WWW:     h.SubmitterWWW,
	}
}

// LookupType is a code/description pair from one of the lookup tables.
type LookupType struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
