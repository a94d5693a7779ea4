package page

type LoadPageDTO struct {
	Page string `json:"page"`
}
