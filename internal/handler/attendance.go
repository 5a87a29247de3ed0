package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xenking/efitness/internal/domain/attendance"
	"github.com/xenking/efitness/internal/session"
)

type attendanceView struct {
	AttendanceID int64      `json:"AttendanceID"`
	ClientID     int64      `json:"ClientID"`
	CheckInTime  time.Time  `json:"CheckInTime"`
	CheckOutTime *time.Time `json:"CheckOutTime"`
	Method       string     `json:"Method"`
	BusinessDate string     `json:"BusinessDate"`
}

func viewRecord(r *attendance.Record) attendanceView {
	return attendanceView{
		AttendanceID: r.ID,
		ClientID:     r.ClientID,
		CheckInTime:  r.CheckInAt,
		CheckOutTime: r.CheckOutAt,
		Method:       r.Method,
		BusinessDate: dateString(r.BusinessDate),
	}
}

func viewRecords(list []attendance.Record) []attendanceView {
	out := make([]attendanceView, len(list))
	for i := range list {
		out[i] = viewRecord(&list[i])
	}
	return out
}

type checkInRequest struct {
	Method string `json:"method"`
}

func (h *Handler) checkIn(c *gin.Context) {
	var req checkInRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	r, err := h.Attendance.CheckIn(c.Request.Context(), session.MustPrincipal(c).UserID, req.Method)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "checked in", "attendance": viewRecord(r)})
}

func (h *Handler) checkOut(c *gin.Context) {
	r, err := h.Attendance.CheckOut(c.Request.Context(), session.MustPrincipal(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "checked out", "attendance": viewRecord(r)})
}

func (h *Handler) recentAttendance(c *gin.Context) {
	list, err := h.Attendance.Recent(c.Request.Context(), session.MustPrincipal(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"attendance": viewRecords(list)})
}

func (h *Handler) attendanceCounts(c *gin.Context) {
	counts, err := h.Attendance.Counts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, len(counts))
	for i, cc := range counts {
		out[i] = gin.H{"ClientID": cc.ClientID, "AttendanceCount": cc.Count}
	}
	ok(c, http.StatusOK, gin.H{"counts": out})
}

func (h *Handler) allAttendance(c *gin.Context) {
	list, err := h.Attendance.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"attendance": viewRecords(list)})
}

func (h *Handler) checkInHistory(c *gin.Context) {
	id, valid := pathID(c, "clientId")
	if !valid {
		return
	}
	list, err := h.Attendance.CheckIns(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"history": viewRecords(list)})
}

func (h *Handler) checkOutHistory(c *gin.Context) {
	id, valid := pathID(c, "clientId")
	if !valid {
		return
	}
	list, err := h.Attendance.CheckOuts(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"history": viewRecords(list)})
}
