package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shule-edu/shule/core/academic"
)

func TestAcademicAPI_directorOnly(t *testing.T) {
	ts := newTestServer(t)
	instructorToken := getToken(t, ts.createInstructor(t, "jane.doe@shule.local"))

	for _, path := range []string{"/v1/academics/cohorts", "/v1/academics/programs", "/v1/academics/years"} {
		t.Run(path, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, path)
			ts.srv.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)}, rec)

			req, rec = newAuthRequest(http.MethodGet, path, instructorToken)
			ts.srv.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"})}, rec)
		})
	}
}

func TestAcademicAPI_queryCohorts(t *testing.T) {
	ts := newTestServer(t)
	directorToken := getToken(t, ts.director)
	path := "/v1/academics/cohorts"

	req, rec := newAuthRequest(http.MethodGet, path, directorToken)
	ts.srv.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte("[]")}, rec)

	ts.createStudent(t, "a@shule.local", "2024-2025")
	ts.createStudent(t, "b@shule.local", "2025-2026")

	req, rec = newAuthRequest(http.MethodGet, path, directorToken)
	ts.srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var cohorts []academic.Cohort
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cohorts))
	require.Len(t, cohorts, 2)
	// most recent intake first
	assert.Equal(t, "2025-2026", cohorts[0].AcademicYear)
	assert.Equal(t, "2024-2025", cohorts[1].AcademicYear)
}

func TestAcademicAPI_queryPrograms(t *testing.T) {
	ts := newTestServer(t)
	directorToken := getToken(t, ts.director)

	_, err := ts.academics.EnsureDefaultProgram(context.Background())
	require.NoError(t, err)

	req, rec := newAuthRequest(http.MethodGet, "/v1/academics/programs", directorToken)
	ts.srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var programs []academic.Program
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &programs))
	require.Len(t, programs, 1)
	assert.Equal(t, "Software Engineering", programs[0].Name)
}

func TestAcademicAPI_queryYears(t *testing.T) {
	ts := newTestServer(t)
	directorToken := getToken(t, ts.director)

	req, rec := newAuthRequest(http.MethodGet, "/v1/academics/years", directorToken)
	ts.srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var years []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &years))
	assert.Len(t, years, 4)
	for _, y := range years {
		assert.Regexp(t, `^\d{4}-\d{4}$`, y)
	}
}
