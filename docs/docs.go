// Package docs registers the OpenAPI document served under /swagger/.
// Regenerate with: swag init -g main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/api/admin/devices": {
			"get": {
				"responses": {
					"200": {
						"description": "조회 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "라이선스 ID 누락",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "라이선스 디바이스 목록 조회",
				"description": "라이선스에 등록된 디바이스 목록을 등록 순으로 조회합니다",
				"tags": [
					"관리자 - 디바이스"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "라이선스 ID",
						"name": "licenseId",
						"in": "query",
						"required": true,
						"type": "string"
					}
				]
			}
		},
		"/api/admin/devices/register": {
			"post": {
				"responses": {
					"201": {
						"description": "등록 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "잘못된 요청",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"409": {
						"description": "이미 등록된 디바이스",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "디바이스 등록 (관리자)",
				"description": "라이선스에 디바이스를 직접 등록합니다. 카운터는 변경되지 않습니다",
				"tags": [
					"관리자 - 디바이스"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "등록 정보",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.RegisterDeviceRequest"
						}
					}
				]
			}
		},
		"/api/admin/devices/revoke": {
			"post": {
				"responses": {
					"200": {
						"description": "해지 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "잘못된 요청",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"404": {
						"description": "등록 정보 없음",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "디바이스 해지",
				"description": "디바이스 등록을 삭제한 뒤 카운터를 1 감소시킵니다 (0 미만으로 내려가지 않음)",
				"tags": [
					"관리자 - 디바이스"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "해지할 등록 정보",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.RevokeDeviceRequest"
						}
					}
				]
			}
		},
		"/api/admin/quota": {
			"get": {
				"responses": {
					"200": {
						"description": "조회 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "라이선스 ID 누락",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"404": {
						"description": "카운터 없음 (아직 활성화되지 않음)",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "디바이스 카운터 조회",
				"description": "라이선스의 현재 디바이스 수와 한도를 조회합니다. limit -1은 무제한입니다",
				"tags": [
					"관리자 - 디바이스 한도"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "라이선스 ID",
						"name": "licenseId",
						"in": "query",
						"required": true,
						"type": "string"
					}
				]
			}
		},
		"/api/admin/quota/reset": {
			"post": {
				"responses": {
					"200": {
						"description": "초기화 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "잘못된 요청",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "디바이스 카운터 초기화",
				"description": "카운터를 0으로 초기화합니다. 등록된 디바이스는 유지되므로 이후 reconcile로 맞출 수 있습니다",
				"tags": [
					"관리자 - 디바이스 한도"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "라이선스 ID",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.QuotaRequest"
						}
					}
				]
			}
		},
		"/api/admin/quota/reconcile": {
			"post": {
				"responses": {
					"200": {
						"description": "재계산 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "잘못된 요청",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "디바이스 카운터 재계산",
				"description": "실제 등록된 디바이스 수로 카운터를 덮어씁니다. 여러 번 호출해도 결과가 같습니다",
				"tags": [
					"관리자 - 디바이스 한도"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "라이선스 ID",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.QuotaRequest"
						}
					}
				]
			}
		},
		"/api/admin/quota/limit": {
			"post": {
				"responses": {
					"200": {
						"description": "변경 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "잘못된 한도",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "디바이스 한도 변경",
				"description": "라이선스의 디바이스 한도를 변경합니다. -1은 무제한, 그 외에는 1 이상이어야 합니다. 현재 카운트는 유지됩니다",
				"tags": [
					"관리자 - 디바이스 한도"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "한도 정보",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.SetLimitRequest"
						}
					}
				]
			}
		},
		"/api/admin/quota/audit": {
			"get": {
				"responses": {
					"200": {
						"description": "점검 결과",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "디바이스 카운터 점검",
				"description": "등록된 디바이스 수와 카운터가 다른 라이선스를 보고합니다. 상태는 변경하지 않습니다",
				"tags": [
					"관리자 - 디바이스 한도"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/admin/licenses": {
			"post": {
				"responses": {
					"201": {
						"description": "생성 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "잘못된 요청",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"401": {
						"description": "인증 필요",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"409": {
						"description": "중복 licenseId",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "라이선스 생성",
				"description": "새로운 라이선스를 생성합니다. licenseId는 중복될 수 없습니다",
				"tags": [
					"관리자 - 라이선스"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "라이선스 정보",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.CreateLicenseRequest"
						}
					}
				]
			},
			"get": {
				"responses": {
					"200": {
						"description": "조회 성공",
						"schema": {
							"$ref": "#/definitions/models.PageResponse"
						}
					},
					"400": {
						"description": "잘못된 요청",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"401": {
						"description": "인증 필요",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "라이선스 목록 조회",
				"description": "licenseId 순으로 정렬된 라이선스 목록을 커서 방식으로 조회합니다",
				"tags": [
					"관리자 - 라이선스"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "이전 페이지의 마지막 licenseId",
						"name": "after",
						"in": "query",
						"required": false,
						"type": "string"
					},
					{
						"description": "페이지 크기 (기본 10)",
						"name": "limit",
						"in": "query",
						"required": false,
						"type": "integer"
					}
				]
			}
		},
		"/api/admin/licenses/{id}": {
			"get": {
				"responses": {
					"200": {
						"description": "조회 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"401": {
						"description": "인증 필요",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"404": {
						"description": "라이선스 없음",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "라이선스 상세 조회",
				"description": "문서 ID로 라이선스를 조회합니다. 상태는 만료일로부터 다시 계산됩니다",
				"tags": [
					"관리자 - 라이선스"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "라이선스 문서 ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				]
			},
			"put": {
				"responses": {
					"200": {
						"description": "수정 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "잘못된 요청",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"404": {
						"description": "라이선스 없음",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"409": {
						"description": "중복 licenseId",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "라이선스 수정",
				"description": "licenseId, 만료일, 메모를 수정합니다. 변경 내역은 활동 로그에 기록됩니다",
				"tags": [
					"관리자 - 라이선스"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "라이선스 문서 ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "수정할 정보",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.UpdateLicenseRequest"
						}
					}
				]
			},
			"delete": {
				"responses": {
					"200": {
						"description": "삭제 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"404": {
						"description": "라이선스 없음",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "라이선스 삭제",
				"description": "라이선스 레코드를 삭제합니다. 디바이스 카운터와 등록 정보는 유지됩니다",
				"tags": [
					"관리자 - 라이선스"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "라이선스 문서 ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				]
			}
		},
		"/api/admin/licenses/export": {
			"get": {
				"responses": {
					"200": {
						"description": "내보내기 성공",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/models.License"
							}
						}
					},
					"401": {
						"description": "인증 필요",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "라이선스 내보내기",
				"description": "모든 라이선스를 JSON 배열로 내보냅니다",
				"tags": [
					"관리자 - 라이선스"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/admin/licenses/import": {
			"post": {
				"responses": {
					"200": {
						"description": "가져온 개수",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "잘못된 요청",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "라이선스 가져오기",
				"description": "JSON 배열의 라이선스를 가져옵니다. 이미 존재하는 licenseId는 건너뜁니다",
				"tags": [
					"관리자 - 라이선스"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "가져올 라이선스 목록",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/models.License"
							}
						}
					}
				]
			}
		},
		"/api/admin/activity": {
			"get": {
				"responses": {
					"200": {
						"description": "조회 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "잘못된 요청",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "활동 로그 조회",
				"description": "최신순 활동 로그를 조회합니다",
				"tags": [
					"관리자 - 활동 로그"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "라이선스 ID 필터",
						"name": "licenseId",
						"in": "query",
						"required": false,
						"type": "string"
					},
					{
						"description": "최대 개수 (기본 100)",
						"name": "limit",
						"in": "query",
						"required": false,
						"type": "integer"
					}
				]
			}
		},
		"/health": {
			"get": {
				"responses": {
					"200": {
						"description": "정상",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"503": {
						"description": "저장소 연결 실패",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "헬스체크",
				"description": "서버와 저장소 연결 상태를 확인합니다",
				"tags": [
					"시스템"
				],
				"produces": [
					"application/json"
				]
			}
		},
		"/api/license/verify": {
			"post": {
				"responses": {
					"200": {
						"description": "검증 결과 (valid=false 포함)",
						"schema": {
							"$ref": "#/definitions/models.VerifyResponse"
						}
					},
					"400": {
						"description": "라이선스 키 누락",
						"schema": {
							"$ref": "#/definitions/models.VerifyResponse"
						}
					},
					"405": {
						"description": "허용되지 않은 메서드",
						"schema": {
							"$ref": "#/definitions/models.MethodNotAllowedResponse"
						}
					},
					"429": {
						"description": "요청 과다",
						"schema": {
							"$ref": "#/definitions/models.VerifyResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.VerifyResponse"
						}
					}
				},
				"summary": "라이선스 검증",
				"description": "라이선스 키를 검증하고 디바이스 슬롯을 하나 사용합니다",
				"tags": [
					"클라이언트 - 라이선스"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "검증할 라이선스 키",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.VerifyRequest"
						}
					}
				]
			}
		},
		"/api/license/activate": {
			"post": {
				"responses": {
					"200": {
						"description": "활성화 결과 (valid=false 포함)",
						"schema": {
							"$ref": "#/definitions/models.ActivateResponse"
						}
					},
					"400": {
						"description": "라이선스 키 또는 디바이스 ID 누락",
						"schema": {
							"$ref": "#/definitions/models.VerifyResponse"
						}
					},
					"405": {
						"description": "허용되지 않은 메서드",
						"schema": {
							"$ref": "#/definitions/models.MethodNotAllowedResponse"
						}
					},
					"429": {
						"description": "요청 과다",
						"schema": {
							"$ref": "#/definitions/models.VerifyResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.VerifyResponse"
						}
					}
				},
				"summary": "라이선스 활성화",
				"description": "라이선스 키를 검증하고 디바이스를 등록합니다. 이미 등록된 디바이스는 슬롯을 사용하지 않습니다",
				"tags": [
					"클라이언트 - 라이선스"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "활성화 정보",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.ActivateRequest"
						}
					}
				]
			}
		},
		"/api/admin/profiles/{userId}": {
			"get": {
				"responses": {
					"200": {
						"description": "조회 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"404": {
						"description": "프로필 없음",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "사용자 프로필 조회",
				"description": "사용자 프로필을 조회합니다. userId에 me를 주면 본인 프로필입니다",
				"tags": [
					"관리자 - 프로필"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "사용자 ID 또는 me",
						"name": "userId",
						"in": "path",
						"required": true,
						"type": "string"
					}
				]
			},
			"put": {
				"responses": {
					"200": {
						"description": "저장 성공",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"400": {
						"description": "잘못된 요청",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"403": {
						"description": "권한 없음",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "서버 에러",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				},
				"summary": "사용자 프로필 저장",
				"description": "프로필을 생성하거나 수정합니다. 다른 사용자의 프로필과 역할은 admin만 변경할 수 있습니다",
				"tags": [
					"관리자 - 프로필"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "사용자 ID 또는 me",
						"name": "userId",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "프로필 정보",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.UserProfile"
						}
					}
				]
			}
		}
	},
	"definitions": {
		"models.APIResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"data": {},
				"error": {
					"type": "string"
				}
			}
		},
		"models.ActivateRequest": {
			"type": "object",
			"properties": {
				"licenseKey": {
					"type": "string"
				},
				"device": {
					"$ref": "#/definitions/models.DeviceIdentity"
				}
			}
		},
		"models.DeviceIdentity": {
			"type": "object",
			"properties": {
				"deviceId": {
					"type": "string"
				},
				"hostname": {
					"type": "string"
				},
				"deviceInfo": {
					"$ref": "#/definitions/models.DeviceInfo"
				}
			}
		},
		"models.DeviceInfo": {
			"type": "object",
			"properties": {
				"hostname": {
					"type": "string"
				},
				"system": {
					"type": "string"
				},
				"release": {
					"type": "string"
				},
				"machine": {
					"type": "string"
				},
				"ip": {
					"type": "string"
				}
			}
		},
		"models.ActivateResponse": {
			"type": "object",
			"properties": {
				"valid": {
					"type": "boolean"
				},
				"message": {
					"type": "string"
				},
				"expiryDate": {
					"type": "string"
				},
				"deviceCount": {
					"type": "integer"
				},
				"deviceLimit": {
					"type": "integer"
				},
				"unlimited": {
					"type": "boolean"
				},
				"registrationId": {
					"type": "string"
				},
				"deviceId": {
					"type": "string"
				}
			}
		},
		"models.VerifyResponse": {
			"type": "object",
			"properties": {
				"valid": {
					"type": "boolean"
				},
				"message": {
					"type": "string"
				},
				"expiryDate": {
					"type": "string"
				},
				"deviceCount": {
					"type": "integer"
				},
				"deviceLimit": {
					"type": "integer"
				},
				"unlimited": {
					"type": "boolean"
				}
			}
		},
		"models.CreateLicenseRequest": {
			"type": "object",
			"properties": {
				"licenseId": {
					"type": "string"
				},
				"expiryDate": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				}
			}
		},
		"models.License": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"licenseId": {
					"type": "string"
				},
				"expiryDate": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"lastUpdated": {
					"type": "string"
				}
			}
		},
		"models.MethodNotAllowedResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				}
			}
		},
		"models.PageResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"data": {},
				"next": {
					"type": "string"
				}
			}
		},
		"models.QuotaRequest": {
			"type": "object",
			"properties": {
				"licenseId": {
					"type": "string"
				}
			}
		},
		"models.RegisterDeviceRequest": {
			"type": "object",
			"properties": {
				"licenseId": {
					"type": "string"
				},
				"device": {
					"$ref": "#/definitions/models.DeviceIdentity"
				}
			}
		},
		"models.RevokeDeviceRequest": {
			"type": "object",
			"properties": {
				"registrationId": {
					"type": "string"
				},
				"licenseId": {
					"type": "string"
				}
			}
		},
		"models.SetLimitRequest": {
			"type": "object",
			"properties": {
				"licenseId": {
					"type": "string"
				},
				"limit": {
					"type": "integer"
				}
			}
		},
		"models.UpdateLicenseRequest": {
			"type": "object",
			"properties": {
				"licenseId": {
					"type": "string"
				},
				"expiryDate": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				}
			}
		},
		"models.UserProfile": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"username": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"firstName": {
					"type": "string"
				},
				"lastName": {
					"type": "string"
				},
				"role": {
					"type": "string"
				},
				"avatarUrl": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"lastLogin": {
					"type": "string"
				},
				"lastUpdated": {
					"type": "string"
				},
				"preferences": {
					"$ref": "#/definitions/models.UserPreferences"
				}
			}
		},
		"models.UserPreferences": {
			"type": "object",
			"properties": {
				"darkMode": {
					"type": "boolean"
				},
				"notificationsEnabled": {
					"type": "boolean"
				},
				"emailAlerts": {
					"type": "boolean"
				}
			}
		},
		"models.VerifyRequest": {
			"type": "object",
			"properties": {
				"licenseKey": {
					"type": "string"
				}
			}
		},
		"models.DeviceRegistration": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"licenseId": {
					"type": "string"
				},
				"deviceId": {
					"type": "string"
				},
				"hostname": {
					"type": "string"
				},
				"deviceInfo": {
					"$ref": "#/definitions/models.DeviceInfo"
				},
				"registeredAt": {
					"type": "string"
				},
				"lastAccessed": {
					"type": "string"
				}
			}
		},
		"models.DeviceQuota": {
			"type": "object",
			"properties": {
				"licenseId": {
					"type": "string"
				},
				"count": {
					"type": "integer"
				},
				"limit": {
					"type": "integer",
					"description": "-1은 무제한"
				},
				"lastUpdated": {
					"type": "string"
				}
			}
		},
		"models.QuotaDrift": {
			"type": "object",
			"properties": {
				"licenseId": {
					"type": "string"
				},
				"count": {
					"type": "integer"
				},
				"registrations": {
					"type": "integer"
				}
			}
		},
		"models.ActivityLogEntry": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"action": {
					"type": "string"
				},
				"licenseId": {
					"type": "string"
				},
				"timestamp": {
					"type": "string"
				},
				"details": {
					"type": "string"
				},
				"user": {
					"type": "string"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "JWT 토큰을 입력하세요. 형식: Bearer {token}",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "License Panel API",
	Description:      "라이선스 검증 및 디바이스 한도 관리 서버",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
