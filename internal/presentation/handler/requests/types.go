package requests

import "github.com/hilthontt/encore/internal/domain"

type submitRequest struct {
	SongTitle string `json:"songTitle" binding:"required,max=200"`
	SongURL   string `json:"songUrl" binding:"required,http_url"`
}

type updateRequest struct {
	SongTitle *string               `json:"songTitle" binding:"omitempty,max=200"`
	SongURL   *string               `json:"songUrl" binding:"omitempty,http_url"`
	Status    *domain.RequestStatus `json:"status" binding:"omitempty,oneof=pending approved rejected playing played"`
	Order     *int                  `json:"order" binding:"omitempty,min=0"`
}

func (u updateRequest) patch() domain.SongRequestPatch {
	return domain.SongRequestPatch{
		SongTitle: u.SongTitle,
		SongURL:   u.SongURL,
		Status:    u.Status,
		Order:     u.Order,
	}
}

type reorderRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,unique,dive,required"`
}

// reorderFailure carries the stored queue so the client can revert.
type reorderFailure struct {
	Error   string               `json:"error"`
	Message string               `json:"message"`
	Queue   []domain.SongRequest `json:"queue"`
}
