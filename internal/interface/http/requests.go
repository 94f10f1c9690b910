package http

import (
	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/report"
	"github.com/yanqian/accessroute/internal/domain/route"
)

type pointRequest struct {
	Lat *float64 `json:"lat" binding:"required,lat"`
	Lng *float64 `json:"lng" binding:"required,lng"`
}

func (p pointRequest) toPoint() geo.Point {
	return geo.Point{Lat: *p.Lat, Lng: *p.Lng}
}

type planRouteRequest struct {
	ClientID         string       `json:"clientId" binding:"omitempty,max=64"`
	Start            pointRequest `json:"start"`
	End              pointRequest `json:"end"`
	IncludeElevation bool         `json:"includeElevation"`
	Name             string       `json:"name" binding:"omitempty,max=100"`
}

func (r planRouteRequest) toDomain() route.PlanRequest {
	return route.PlanRequest{
		ClientID:         r.ClientID,
		Start:            r.Start.toPoint(),
		End:              r.End.toPoint(),
		IncludeElevation: r.IncludeElevation,
	}
}

type createReportRequest struct {
	Lat         *float64 `json:"lat" binding:"required,lat"`
	Lng         *float64 `json:"lng" binding:"required,lng"`
	Type        string   `json:"type" binding:"required,issuetype"`
	Description string   `json:"description" binding:"max=500"`
	PhotoURL    string   `json:"photoUrl" binding:"omitempty,url"`
}

func (r createReportRequest) toDomain() report.CreateRequest {
	return report.CreateRequest{
		Location:    geo.Point{Lat: *r.Lat, Lng: *r.Lng},
		Type:        report.IssueType(r.Type),
		Description: r.Description,
		PhotoURL:    r.PhotoURL,
	}
}

type photoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required,oneof=image/jpeg image/png image/webp"`
}

type searchQuery struct {
	Query    string `form:"q"`
	ClientID string `form:"client" binding:"omitempty,max=64"`
}

type reverseQuery struct {
	Lat *float64 `form:"lat" binding:"required,lat"`
	Lon *float64 `form:"lon" binding:"required,lng"`
}
