package internal

import (
	"encoding/json"
	"net/http"
	"strconv"

	"kern-inventory-api/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) qcLookup(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.DB.QueryContext(r.Context(), `SELECT id, name FROM `+table+` ORDER BY name`)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		defer rows.Close()

		out := []models.QCLookup{}
		for rows.Next() {
			var l models.QCLookup
			if err := rows.Scan(&l.ID, &l.Name); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			out = append(out, l)
		}
		if err := rows.Err(); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) qcMaterialsByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid productId", 400)
		return
	}

	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT id, final_product_id, name
		FROM qc_materials
		WHERE final_product_id = $1
		ORDER BY name`, productID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	out := []models.QCMaterial{}
	for rows.Next() {
		var m models.QCMaterial
		if err := rows.Scan(&m.ID, &m.FinalProductID, &m.Name); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listQCTemplates(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT id, template_name, validation_type_id, final_product_id,
		       material_id, tools_to_quality_check, created_at
		FROM qc_templates
		ORDER BY created_at DESC`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	out := []models.QCTemplate{}
	for rows.Next() {
		var t models.QCTemplate
		if err := rows.Scan(&t.ID, &t.TemplateName, &t.ValidationTypeID, &t.FinalProductID,
			&t.MaterialID, &t.ToolsToQualityCheck, &t.CreatedAt); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createQCTemplate(w http.ResponseWriter, r *http.Request) {
	var in models.QCTemplate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.TemplateName == "" {
		http.Error(w, "templateName is required", 400)
		return
	}

	var id int64
	err := s.DB.QueryRowContext(r.Context(), `
		INSERT INTO qc_templates (template_name, validation_type_id, final_product_id,
			material_id, tools_to_quality_check)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		in.TemplateName, in.ValidationTypeID, in.FinalProductID,
		in.MaterialID, in.ToolsToQualityCheck,
	).Scan(&id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"templateId": id})
}

func (s *Server) createQCControlPoint(w http.ResponseWriter, r *http.Request) {
	var in models.QCControlPoint
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.TemplateID == 0 || in.ControlPointName == "" {
		http.Error(w, "qcTemplateId and controlPointName are required", 400)
		return
	}

	err := s.DB.QueryRowContext(r.Context(), `
		INSERT INTO qc_control_points (template_id, control_point_type_id, control_point_name,
			target_value, unit, tolerance, instructions, image_path, sequence_order)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`,
		in.TemplateID, in.ControlPointTypeID, in.ControlPointName,
		in.TargetValue, in.Unit, in.Tolerance, in.Instructions, in.ImagePath, in.SequenceOrder,
	).Scan(&in.ID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) qcControlPointsByTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := strconv.ParseInt(chi.URLParam(r, "templateId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid templateId", 400)
		return
	}

	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT id, template_id, control_point_type_id, control_point_name,
		       target_value, unit, tolerance, instructions, image_path, sequence_order
		FROM qc_control_points
		WHERE template_id = $1
		ORDER BY sequence_order, id`, templateID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	out := []models.QCControlPoint{}
	for rows.Next() {
		var p models.QCControlPoint
		if err := rows.Scan(&p.ID, &p.TemplateID, &p.ControlPointTypeID, &p.ControlPointName,
			&p.TargetValue, &p.Unit, &p.Tolerance, &p.Instructions, &p.ImagePath, &p.SequenceOrder); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteQCControlPoint(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM qc_control_points WHERE id = $1`, id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
