package catalog

// createProductRequest is the JSON payload for adding a manual
// product. Price stays textual; it is normalized at search time.
type createProductRequest struct {
	Code         string `json:"code"`
	Name         string `json:"name" validate:"required"`
	Price        string `json:"price"`
	SupplierName string `json:"supplier_name"`
	Owner        string `json:"owner" validate:"required"`
	Observations string `json:"observations"`
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

type addAssociationRequest struct {
	Owner string `json:"owner" validate:"required"`
}

type enqueueResponse struct {
	Task string `json:"task"`
	ID   string `json:"id"`
}
