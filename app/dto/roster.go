package dto

type TransferRequest struct {
	Codes      []string `json:"codes"`
	Department string   `json:"department"`
}

type RosterChangeRequest struct {
	Codes []string `json:"codes"`
}

type RosterChangeResponse struct {
	CommandsQueued int `json:"commands_queued"`
}

type CreateEmployeeRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Privilege  int    `json:"privilege"`
	Password   string `json:"password,omitempty"`
	CardNumber string `json:"card_number,omitempty"`
	Department string `json:"department,omitempty"`
}

type RegisterDeviceRequest struct {
	Serial    string `json:"serial"`
	Name      string `json:"name"`
	Direction string `json:"direction,omitempty"`
}
