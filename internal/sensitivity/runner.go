package sensitivity

import (
	"budget-impact/internal/model"
	"budget-impact/internal/projection"
)

// Runner is the projection the analyses invoke repeatedly.
// *projection.Engine satisfies it.
type Runner interface {
	Run(modelID model.ModelID, in *model.Inputs) (*projection.Result, error)
}
